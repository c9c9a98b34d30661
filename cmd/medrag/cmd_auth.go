package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rohzzn/medical-rag/internal/api"
	"github.com/rohzzn/medical-rag/internal/session"
)

var registerFullName string

func init() {
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
	registerCmd.Flags().StringVar(&registerFullName, "full-name", "", "display name for the new account")
}

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Log in and store the session credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := args[0]
		password, err := promptPassword()
		if err != nil {
			return err
		}

		client := api.New(cfg.APIBaseURL, nil)
		tok, err := client.Login(cmd.Context(), email, password)
		if err != nil {
			var reqErr *api.RequestError
			if errors.As(err, &reqErr) && reqErr.Status == 401 {
				return errors.New("incorrect email or password")
			}
			return fmt.Errorf("login: %w", err)
		}

		user, err := client.MeWithToken(cmd.Context(), tok.AccessToken)
		if err != nil {
			return fmt.Errorf("fetch profile: %w", err)
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Save(session.Credential{
			Token:    tok.AccessToken,
			UserID:   user.ID,
			Email:    user.Email,
			FullName: user.FullName,
		}); err != nil {
			return err
		}

		fmt.Printf("Logged in as %s.\n", user.Email)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <email>",
	Short: "Create a new account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := promptPassword()
		if err != nil {
			return err
		}

		client := api.New(cfg.APIBaseURL, nil)
		user, err := client.Register(cmd.Context(), api.RegisterRequest{
			Email:    args[0],
			Password: password,
			FullName: registerFullName,
		})
		if err != nil {
			return fmt.Errorf("register: %w", err)
		}

		fmt.Printf("Registered %s. Run `medrag login %s` to sign in.\n", user.Email, user.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session credential",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the identity behind the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		cred, err := store.Get()
		if errors.Is(err, session.ErrNoSession) {
			return errors.New("not logged in")
		}
		if err != nil {
			return err
		}

		name := cred.FullName
		if name == "" {
			name = "(no name)"
		}
		fmt.Printf("%s %s\n", cred.Email, name)
		fmt.Printf("session expires %s\n", cred.ExpiresAt.Format(time.RFC1123))
		return nil
	},
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	return password, nil
}
