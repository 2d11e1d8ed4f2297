package cli

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mrlokans/qbank/internal/auth"
)

// HashTokenCommand prints a bcrypt hash for AUTH_ADMIN_TOKEN_HASHES
type HashTokenCommand struct {
	Token    string
	Generate bool
	Cost     int

	In  io.Reader
	Out io.Writer
}

func NewHashTokenCommand() *HashTokenCommand {
	return &HashTokenCommand{In: os.Stdin, Out: os.Stdout}
}

func (cmd *HashTokenCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("hash-token", flag.ExitOnError)

	fs.StringVar(&cmd.Token, "token", "", "Token to hash (read from stdin if empty)")
	fs.BoolVar(&cmd.Generate, "generate", false, "Generate a new random token and print it with its hash")
	fs.IntVar(&cmd.Cost, "cost", 0, "bcrypt cost (0 uses the default)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s hash-token [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Hash an admin API token for the AUTH_ADMIN_TOKEN_HASHES setting.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s hash-token -generate\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  echo -n \"$TOKEN\" | %s hash-token\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Generate && cmd.Token != "" {
		return fmt.Errorf("-token and -generate are mutually exclusive")
	}

	return nil
}

func (cmd *HashTokenCommand) Run() error {
	token := cmd.Token
	if cmd.Generate {
		generated, err := auth.GenerateToken()
		if err != nil {
			return fmt.Errorf("failed to generate token: %w", err)
		}
		token = generated
	}
	if token == "" && cmd.In != nil {
		line, err := bufio.NewReader(cmd.In).ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read token: %w", err)
		}
		token = strings.TrimSpace(line)
	}
	if token == "" {
		return fmt.Errorf("no token given: use -token, -generate or pipe it on stdin")
	}

	hash, err := auth.HashToken(token, cmd.Cost)
	if err != nil {
		return err
	}

	if cmd.Generate {
		fmt.Fprintf(cmd.Out, "Token: %s\n", token)
		fmt.Fprintf(cmd.Out, "Hash:  %s\n", hash)
		return nil
	}
	fmt.Fprintln(cmd.Out, hash)
	return nil
}
