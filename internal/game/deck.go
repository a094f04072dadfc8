package game

const DeckSize = 52

// Rand is the randomness source used for shuffling and dice. *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// Build returns one card per (rank, suit) pair, suit by suit.
func Build() []Card {
	cards := make([]Card, 0, DeckSize)
	for _, s := range Suits {
		for _, r := range Ranks {
			cards = append(cards, Card{Rank: r, Suit: s})
		}
	}
	return cards
}

// Shuffle permutes cards in place with Fisher-Yates.
func Shuffle(cards []Card, rng Rand) {
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// Shoe is the pool of cards left to deal. Cards are dealt from the end.
type Shoe struct {
	cards      []Card
	rng        Rand
	reshuffles int
}

// NewShoe returns a freshly shuffled 52-card shoe.
func NewShoe(rng Rand) *Shoe {
	if rng == nil {
		panic("rng is required for shoe creation")
	}
	s := &Shoe{rng: rng}
	s.refill()
	return s
}

// NewShoeWithCards returns a shoe holding exactly cards. The last card in the
// slice is dealt first. Once it runs out the shoe refills from rng.
func NewShoeWithCards(rng Rand, cards []Card) *Shoe {
	if rng == nil {
		panic("rng is required for shoe creation")
	}
	return &Shoe{
		cards: append([]Card(nil), cards...),
		rng:   rng,
	}
}

func (s *Shoe) refill() {
	cards := Build()
	Shuffle(cards, s.rng)
	s.cards = cards
}

// Draw removes and returns the next card, replacing an empty shoe with a
// freshly shuffled one first.
func (s *Shoe) Draw() Card {
	if len(s.cards) == 0 {
		s.refill()
		s.reshuffles++
	}

	card := s.cards[len(s.cards)-1]
	s.cards = s.cards[:len(s.cards)-1]
	return card
}

func (s *Shoe) Remaining() int {
	return len(s.cards)
}

func (s *Shoe) Empty() bool {
	return len(s.cards) == 0
}

// Reshuffles counts how many times the shoe was rebuilt after running out.
func (s *Shoe) Reshuffles() int {
	return s.reshuffles
}

func (s *Shoe) Restock() {
	if s.Empty() {
		s.refill()
		s.reshuffles++
	}
}
