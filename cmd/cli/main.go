// Command cli is a small smoke client for an authgate server: it can sign up
// an account, log in and show the authenticated identity, and refresh the
// access token using the cookie-bound session.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dmitrijs2005/authgate/internal/client/api"
	"github.com/dmitrijs2005/authgate/internal/client/cli"
)

func main() {
	server := flag.String("s", "http://localhost:3000", "server base URL")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: cli [-s server] signup|login")
		os.Exit(2)
	}

	client, err := api.New(*server)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	switch flag.Arg(0) {
	case "signup":
		err = runSignup(ctx, client, reader)
	case "login":
		err = runLogin(ctx, client, reader)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", flag.Arg(0))
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runSignup(ctx context.Context, client *api.Client, reader *bufio.Reader) error {
	username, err := cli.GetSimpleText(reader, "Username", os.Stdout)
	if err != nil {
		return err
	}
	email, err := cli.GetSimpleText(reader, "Email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := cli.GetPassword(os.Stdout)
	if err != nil {
		return err
	}

	user, err := client.Signup(ctx, username, email, password)
	if err != nil {
		return err
	}

	fmt.Printf("registered %s (id=%s)\n", user.Username, user.ID)
	return nil
}

func runLogin(ctx context.Context, client *api.Client, reader *bufio.Reader) error {
	email, err := cli.GetSimpleText(reader, "Email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := cli.GetPassword(os.Stdout)
	if err != nil {
		return err
	}

	user, err := client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Printf("logged in as %s\n", user.Username)

	userID, err := client.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("access token subject: %s\n", userID)

	if err := client.Refresh(ctx); err != nil {
		return err
	}
	fmt.Println("access token refreshed")

	return nil
}
