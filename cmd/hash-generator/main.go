// Command hash-generator prints bcrypt hashes for passwords given as
// arguments, or one per line on stdin. It is used to re-hash plaintext
// passwords carried over from the legacy account store.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/competehub/compete-api/internal/domain"
	"github.com/competehub/compete-api/internal/service/auth"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor")
	flag.Parse()

	if err := generate(auth.NewBcryptHasher(*cost), flag.Args(), os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "hash-generator:", err)
		os.Exit(1)
	}
}

// generate writes one hash per password. Passwords come from args, or from
// in when args is empty. Blank lines are skipped.
func generate(hasher auth.PasswordHasher, args []string, in io.Reader, out io.Writer) error {
	passwords := args
	if len(passwords) == 0 {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			if line := strings.TrimRight(scanner.Text(), "\r"); line != "" {
				passwords = append(passwords, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read passwords: %w", err)
		}
	}
	if len(passwords) == 0 {
		return errors.New("no passwords given")
	}

	for i, password := range passwords {
		if len(password) > domain.MaxPasswordLength {
			return fmt.Errorf("password %d exceeds %d bytes", i+1, domain.MaxPasswordLength)
		}
		hash, err := hasher.Hash(password)
		if err != nil {
			return fmt.Errorf("failed to hash password %d: %w", i+1, err)
		}
		if _, err := fmt.Fprintln(out, hash); err != nil {
			return err
		}
	}
	return nil
}
