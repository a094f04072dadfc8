package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"casino/internal/account"
	"casino/internal/console"
	"casino/internal/httpapi"
)

type ServeCmd struct {
	Addr string `help:"Listen address (overrides HTTP_ADDR)"`
}

func (c *ServeCmd) Run(g *Globals) error {
	a, err := g.open()
	if err != nil {
		return err
	}
	defer a.Close()

	addr := a.cfg.HTTPAddr
	if c.Addr != "" {
		addr = c.Addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go a.sessions.Run(ctx, time.Minute)

	return httpapi.New(a.accounts, a.sessions, a.logger).Run(ctx, addr)
}

type PlayCmd struct {
	User     string `short:"u" required:"" help:"Username"`
	Password string `short:"p" required:"" help:"Password"`
	Register bool   `help:"Create the account first"`
}

func (c *PlayCmd) Run(g *Globals) error {
	a, err := g.open()
	if err != nil {
		return err
	}
	defer a.Close()

	var u *account.User
	if c.Register {
		u, err = a.accounts.Register(c.User, c.Password, c.Password)
	} else {
		u, err = a.accounts.Login(c.User, c.Password)
	}
	if err != nil {
		return err
	}

	sess, err := a.sessions.Open(u)
	if err != nil {
		return err
	}
	defer a.sessions.Close(sess.ID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return console.New(sess, os.Stdout).Run(ctx, os.Stdin)
}

type TopCmd struct {
	Limit int `default:"10" help:"Number of players to show"`
}

func (c *TopCmd) Run(g *Globals) error {
	if c.Limit <= 0 {
		return errors.New("--limit must be positive")
	}

	a, err := g.open()
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.accounts.Repository().Top(c.Limit)
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		fmt.Println("Nobody has played yet.")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "PLAYER", "BALANCE", "GAMES", "WIN RATE")
	for i, s := range stats {
		t.Row(
			strconv.Itoa(i+1),
			s.Username,
			strconv.Itoa(s.Balance),
			strconv.Itoa(s.Games),
			fmt.Sprintf("%.0f%%", s.WinRate),
		)
	}
	fmt.Println(t)
	return nil
}
