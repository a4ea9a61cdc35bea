package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies it;
// tests provide a recording stub.
type execIface interface {
	Status(ctx context.Context) error
	SetOffline(ctx context.Context, enabled bool) error

	Drafts(ctx context.Context) error
	DraftAdd(ctx context.Context) error
	DraftEdit(ctx context.Context, id string) error
	DraftRemove(ctx context.Context, id string) error
	DraftShow(ctx context.Context, id string) error

	Prefs(ctx context.Context, args []string) error
	Posts(ctx context.Context) error
	Sync(ctx context.Context) error
	Fetch(ctx context.Context, rawURL string) error

	Audit(ctx context.Context) error
	ProbeWrite(ctx context.Context) error
	ProbeRead(ctx context.Context) error
	Cleanup(ctx context.Context) error
	Purge(ctx context.Context) error
}

const helpText = `Available commands:
  status                      show the offline snapshot
  offline on|off              toggle offline mode
  drafts                      list drafts, newest first
  draft add                   write a new draft
  draft edit|rm|show <id>     change, delete or print a draft
  prefs [set <key> <value>]   show or change preferences
  posts                       list cached posts
  sync                        push queued changes to the server
  fetch <url>                 request a URL through the offline router
  audit                       report storage usage of every backend
  probe write|read            write or check the persistence canary
  cleanup                     remove expired posts, cache entries and drafts
  purge                       delete all local data
  exit | quit                 leave the program`

// runREPL reads one command per line from scanner and dispatches it to a.
// The loop exits on EOF or "exit"/"quit". Handlers report their own errors,
// so a failing command never ends the session.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner, prompt bool) {
	for {
		if prompt {
			printlnFn(fmt.Sprintf("feed %s> ", statusFn()))
		}
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printlnFn(helpText)

		case "status":
			_ = a.Status(ctx)

		case "offline":
			switch arg(args, 0) {
			case "on":
				_ = a.SetOffline(ctx, true)
			case "off":
				_ = a.SetOffline(ctx, false)
			default:
				printlnFn("Usage: offline on|off")
			}

		case "drafts":
			_ = a.Drafts(ctx)

		case "draft":
			sub, id := arg(args, 0), arg(args, 1)
			if sub == "add" {
				_ = a.DraftAdd(ctx)
				continue
			}
			if id == "" {
				printlnFn("Usage: draft add | draft edit|rm|show <id>")
				continue
			}
			switch sub {
			case "edit":
				_ = a.DraftEdit(ctx, id)
			case "rm":
				_ = a.DraftRemove(ctx, id)
			case "show":
				_ = a.DraftShow(ctx, id)
			default:
				printlnFn("Usage: draft add | draft edit|rm|show <id>")
			}

		case "prefs":
			_ = a.Prefs(ctx, args)

		case "posts":
			_ = a.Posts(ctx)

		case "sync":
			_ = a.Sync(ctx)

		case "fetch":
			if len(args) == 0 {
				printlnFn("Usage: fetch <url>")
				continue
			}
			_ = a.Fetch(ctx, args[0])

		case "audit":
			_ = a.Audit(ctx)

		case "probe":
			switch arg(args, 0) {
			case "write":
				_ = a.ProbeWrite(ctx)
			case "read":
				_ = a.ProbeRead(ctx)
			default:
				printlnFn("Usage: probe write|read")
			}

		case "cleanup":
			_ = a.Cleanup(ctx)

		case "purge":
			_ = a.Purge(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
