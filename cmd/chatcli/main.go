// Command chatcli is an interactive terminal client for the chat API.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"chatapi/internal/client"
)

func main() {
	baseURL := flag.String("url", "http://localhost:5000/api", "API base URL including the prefix")
	apiKey := flag.String("api-key", os.Getenv("SECRET_KEY"), "value for the X-API-Key header")
	username := flag.String("user", "", "username to log in as")
	register := flag.Bool("register", false, "register the user before logging in")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reader := bufio.NewReader(os.Stdin)
	if *username == "" {
		name, err := readLine(reader, "Username", os.Stdout)
		if err != nil {
			fail(err)
		}
		*username = name
	}

	password, err := readSecret(os.Stdout)
	if err != nil {
		fail(err)
	}

	cl := client.New(*baseURL, client.WithAPIKey(*apiKey))
	if *register {
		if _, err := cl.Register(ctx, *username, password, ""); err != nil {
			fail(fmt.Errorf("register: %w", err))
		}
		fmt.Println("registered", *username)
	}
	sess, err := cl.Login(ctx, *username, password)
	if err != nil {
		fail(fmt.Errorf("login: %w", err))
	}
	fmt.Printf("logged in as %s (%s)\n", sess.User.Username, sess.User.ID)

	runREPL(ctx, cl, os.Stdout, bufio.NewScanner(reader))
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func readSecret(w *os.File) (string, error) {
	pw, err := getPassword(w)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(pw)), nil
}
