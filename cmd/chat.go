package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kakuhq/kaku/internal/conversation"
	"github.com/kakuhq/kaku/internal/prompt"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Write with Kaku in an interactive session",
	Long: `Starts a line-based chat. Kaku asks a few questions before longer pieces,
then drafts them in your style. Drafts can be saved to your corpus.

Commands:
  /new              start a new conversation
  /list             list conversations
  /open <id>        switch to a conversation
  /delete           delete the current conversation
  /style <preset>   set the style (` + presetList(prompt.Styles) + `)
  /purpose <preset> set the purpose (` + presetList(prompt.Purposes) + `)
  /save             save the pending draft to your corpus
  /discard          discard the pending draft
  /quit             leave`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().String("resume", "", "continue the conversation with this id")
	chatCmd.Flags().String("style", string(prompt.StyleOriginal), "initial style preset")
	chatCmd.Flags().String("purpose", string(prompt.PurposeGeneral), "initial purpose preset")
	rootCmd.AddCommand(chatCmd)
}

func presetList[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strings.ToLower(string(v))
	}
	return strings.Join(parts, ", ")
}

// chatSession is the state of one interactive session.
type chatSession struct {
	ctx     context.Context
	manager *conversation.Manager
	out     io.Writer
	conv    *conversation.Conversation
	sel     conversation.Selection
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	backend, err := a.chatBackend()
	if err != nil {
		return err
	}

	style, _ := cmd.Flags().GetString("style")
	purpose, _ := cmd.Flags().GetString("purpose")
	s := &chatSession{
		ctx:     cmd.Context(),
		manager: a.conversations(backend),
		out:     cmd.OutOrStdout(),
		sel: conversation.Selection{
			Style:   string(prompt.ParseStyle(style)),
			Purpose: string(prompt.ParsePurpose(purpose)),
		},
	}

	if id, _ := cmd.Flags().GetString("resume"); id != "" {
		err = s.open(id)
	} else {
		err = s.newConversation()
	}
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for {
		fmt.Fprint(s.out, "\nyou> ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			quit, err := s.command(line)
			if err != nil {
				fmt.Fprintf(s.out, "error: %v\n", err)
			}
			if quit {
				return nil
			}
			continue
		}
		if err := s.send(line); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
}

func (s *chatSession) command(line string) (quit bool, err error) {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "/quit", "/exit", "/q":
		return true, nil
	case "/new":
		return false, s.newConversation()
	case "/list":
		return false, s.list()
	case "/open":
		if arg == "" {
			return false, fmt.Errorf("usage: /open <id>")
		}
		return false, s.open(arg)
	case "/delete":
		next, err := s.manager.Delete(s.ctx, localOwner, s.conv.ID)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "Deleted. Now in %q.\n", next.Title)
		s.conv = next
		return false, nil
	case "/style":
		s.sel.Style = string(prompt.ParseStyle(arg))
		fmt.Fprintf(s.out, "Style: %s\n", s.sel.Style)
		return false, nil
	case "/purpose":
		s.sel.Purpose = string(prompt.ParsePurpose(arg))
		fmt.Fprintf(s.out, "Purpose: %s\n", s.sel.Purpose)
		return false, nil
	case "/save":
		conv, doc, err := s.manager.ConfirmDraft(s.ctx, localOwner, s.conv.ID)
		if err != nil {
			return false, err
		}
		s.conv = conv
		fmt.Fprintf(s.out, "Saved %q (%d words) to your corpus.\n", doc.Title, doc.Metadata.WordCount)
		return false, nil
	case "/discard":
		conv, err := s.manager.DiscardDraft(s.ctx, localOwner, s.conv.ID)
		if err != nil {
			return false, err
		}
		s.conv = conv
		fmt.Fprintln(s.out, "Draft discarded.")
		return false, nil
	default:
		return false, fmt.Errorf("unknown command %s", name)
	}
}

func (s *chatSession) newConversation() error {
	conv, err := s.manager.New(s.ctx, localOwner)
	if err != nil {
		return err
	}
	s.conv = conv
	s.printLast()
	return nil
}

func (s *chatSession) open(id string) error {
	conv, err := s.manager.Load(s.ctx, localOwner, id)
	if errors.Is(err, conversation.ErrNotFound) {
		return fmt.Errorf("no conversation with id %s", id)
	}
	if err != nil {
		return err
	}
	s.conv = conv
	fmt.Fprintf(s.out, "== %s ==\n", conv.Title)
	s.printLast()
	return nil
}

func (s *chatSession) list() error {
	convs, err := s.manager.List(s.ctx, localOwner)
	if err != nil {
		return err
	}
	for _, c := range convs {
		marker := " "
		if c.ID == s.conv.ID {
			marker = "*"
		}
		fmt.Fprintf(s.out, "%s %s  %s  %s\n", marker, c.ID, c.UpdatedAt.Local().Format("2006-01-02 15:04"), c.Title)
	}
	return nil
}

func (s *chatSession) send(content string) error {
	conv, err := s.manager.SendObserved(s.ctx, localOwner, s.conv.ID, content, s.sel, func(*conversation.Conversation) {
		fmt.Fprintln(s.out, "kaku is writing...")
	})
	if conv != nil {
		s.conv = conv
	}
	if err != nil {
		return err
	}
	s.printLast()
	return nil
}

func (s *chatSession) printLast() {
	if len(s.conv.Messages) == 0 {
		return
	}
	last := s.conv.Messages[len(s.conv.Messages)-1]
	fmt.Fprintf(s.out, "\nkaku> %s\n", last.Content)

	if d := s.conv.PendingDraft(); d != nil {
		fmt.Fprintf(s.out, "\n--- %s ---\n%s\n---\nType /save to add it to your corpus or /discard to drop it.\n", d.Title, d.Content)
	}
	if len(last.Suggestions) > 0 {
		fmt.Fprintln(s.out, "\nYou could ask:")
		for _, sug := range last.Suggestions {
			fmt.Fprintf(s.out, "  - %s\n", sug)
		}
	}
}
