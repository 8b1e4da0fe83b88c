package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"chatapi/internal/client"
	"chatapi/internal/domain"
)

// chatAPI is the command surface the REPL needs. *client.Client satisfies it.
type chatAPI interface {
	Session() *client.Session
	SendMessage(ctx context.Context, content, recipientID string) (*domain.Message, error)
	ListMessages(ctx context.Context) ([]domain.Message, error)
	MyMessages(ctx context.Context) ([]domain.Message, error)
	GetMessage(ctx context.Context, id string) (*domain.Message, error)
	DeleteMessage(ctx context.Context, id string) error
	TokenInfo(ctx context.Context) (*client.TokenInfo, error)
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
}

const helpText = `commands:
  send <text>            post a public message
  dm <user_id> <text>    send a private message
  list                   messages visible to you
  mine                   messages you wrote
  get <id>               show one message
  delete <id>            delete one of your messages
  info                   access token details
  refresh                refresh the access token now
  logout                 revoke the session and exit
  quit                   exit`

// runREPL reads one command per line until EOF, quit or logout. Command
// errors are printed and the loop goes on.
func runREPL(ctx context.Context, api chatAPI, w io.Writer, scanner *bufio.Scanner) {
	for {
		fmt.Fprint(w, prompt(api))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		done, err := dispatch(ctx, api, w, parts[0], parts[1:])
		if err != nil {
			fmt.Fprintln(w, "error:", describe(err))
		}
		if done {
			return
		}
	}
}

func prompt(api chatAPI) string {
	if s := api.Session(); s != nil {
		return s.User.Username + "> "
	}
	return "> "
}

func dispatch(ctx context.Context, api chatAPI, w io.Writer, cmd string, args []string) (bool, error) {
	switch cmd {
	case "help":
		fmt.Fprintln(w, helpText)

	case "send":
		if len(args) == 0 {
			return false, errors.New("usage: send <text>")
		}
		msg, err := api.SendMessage(ctx, strings.Join(args, " "), "")
		if err != nil {
			return false, err
		}
		fmt.Fprintln(w, "sent", msg.ID)

	case "dm":
		if len(args) < 2 {
			return false, errors.New("usage: dm <user_id> <text>")
		}
		msg, err := api.SendMessage(ctx, strings.Join(args[1:], " "), args[0])
		if err != nil {
			return false, err
		}
		fmt.Fprintln(w, "sent", msg.ID)

	case "list", "mine":
		list := api.ListMessages
		if cmd == "mine" {
			list = api.MyMessages
		}
		msgs, err := list(ctx)
		if err != nil {
			return false, err
		}
		if len(msgs) == 0 {
			fmt.Fprintln(w, "no messages")
		}
		for i := range msgs {
			printMessage(w, &msgs[i])
		}

	case "get":
		if len(args) != 1 {
			return false, errors.New("usage: get <id>")
		}
		msg, err := api.GetMessage(ctx, args[0])
		if err != nil {
			return false, err
		}
		printMessage(w, msg)

	case "delete":
		if len(args) != 1 {
			return false, errors.New("usage: delete <id>")
		}
		if err := api.DeleteMessage(ctx, args[0]); err != nil {
			return false, err
		}
		fmt.Fprintln(w, "deleted", args[0])

	case "info":
		info, err := api.TokenInfo(ctx)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(w, "type=%s issued=%s expires=%s refresh_at=%s\n", info.Type,
			unixTime(info.IssuedAt), unixTime(info.ExpiresAt), unixTime(info.RefreshAt))

	case "refresh":
		if err := api.Refresh(ctx); err != nil {
			return false, err
		}
		fmt.Fprintln(w, "access token refreshed")

	case "logout":
		if err := api.Logout(ctx); err != nil {
			return false, err
		}
		fmt.Fprintln(w, "logged out")
		return true, nil

	case "quit", "exit":
		return true, nil

	default:
		fmt.Fprintf(w, "unknown command %q, type help\n", cmd)
	}
	return false, nil
}

func printMessage(w io.Writer, m *domain.Message) {
	scope := "public"
	if !m.IsPublic() {
		scope = "to " + *m.RecipientID
	}
	fmt.Fprintf(w, "[%s] %s (%s) %s: %s\n",
		m.Timestamp.Local().Format("2006-01-02 15:04:05"), m.ID, scope, m.Username, m.Content)
}

func unixTime(sec int64) string {
	return time.Unix(sec, 0).Local().Format(time.RFC3339)
}

func describe(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("%s (%d)", apiErr.Message, apiErr.StatusCode)
	}
	return err.Error()
}
