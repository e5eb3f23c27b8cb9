// Command manage-users edits the user directory offline: it talks straight
// to the object store with the same conditional-save/retry discipline as
// the API server, so it can run safely while the dashboard is live.
//
// Usage:
//
//	manage-users [-config_folder config] add <email> <name> [-role member|administrator] [-password ...]
//	manage-users [-config_folder config] set-role <email> <member|administrator>
//	manage-users [-config_folder config] remove <email>
//	manage-users [-config_folder config] list
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"github.com/gradeboard-dev/gradeboard/internal/config"
	"github.com/gradeboard-dev/gradeboard/internal/domain"
	"github.com/gradeboard-dev/gradeboard/internal/logger"
	"github.com/gradeboard-dev/gradeboard/internal/password"
	"github.com/gradeboard-dev/gradeboard/internal/service"
	s3store "github.com/gradeboard-dev/gradeboard/internal/storage/s3"
)

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "config", "path to folder with configs")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	accessKey, secretKey := cfg.S3Credentials()
	store, err := s3store.New(ctx, s3store.Config{
		Bucket:          cfg.Public.S3.Bucket,
		Region:          cfg.Public.S3.Region,
		BaseEndpoint:    cfg.Public.S3.BaseEndpoint,
		AccessKeyID:     accessKey,
		SecretAccessKey: secretKey,
		RequestTimeout:  cfg.S3RequestTimeout(),
	})
	if err != nil {
		fatal(err)
	}
	directory := service.NewDirectory(store)

	switch args[0] {
	case "add":
		err = addUser(ctx, directory, args[1:])
	case "set-role":
		err = setRole(ctx, directory, args[1:])
	case "remove":
		err = removeUser(ctx, directory, args[1:])
	case "list":
		err = listUsers(ctx, directory)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fatal(err)
	}
}

func addUser(ctx context.Context, directory *service.Directory, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	role := fs.String("role", string(domain.RoleMember), "user role (member or administrator)")
	plaintext := fs.String("password", "", "password (prompted interactively if omitted)")

	// Positional args first, then flags: add <email> <name> [-role ...]
	if len(args) < 2 {
		return errors.New("usage: add <email> <name> [-role member|administrator] [-password ...]")
	}
	email, name := domain.NormalizeEmail(args[0]), args[1]
	if err := fs.Parse(args[2:]); err != nil {
		return err
	}

	parsedRole, err := domain.ParseRole(*role)
	if err != nil {
		return err
	}

	pw := *plaintext
	if pw == "" {
		if pw, err = promptPassword(); err != nil {
			return err
		}
	}

	hash, err := password.Hash(pw)
	if err != nil {
		return err
	}

	user := domain.User{
		Email:        email,
		Name:         name,
		Role:         parsedRole,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	err = directory.Mutate(ctx, func(dir *domain.Directory) error {
		if _, exists := dir.Find(email); exists {
			return fmt.Errorf("user %s already exists", email)
		}
		dir.Upsert(user)
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("User created:\n  Email: %s\n  Name:  %s\n  Role:  %s\n", email, name, parsedRole)
	return nil
}

func setRole(ctx context.Context, directory *service.Directory, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: set-role <email> <member|administrator>")
	}
	email := domain.NormalizeEmail(args[0])
	role, err := domain.ParseRole(args[1])
	if err != nil {
		return err
	}

	err = directory.Mutate(ctx, func(dir *domain.Directory) error {
		user, exists := dir.Find(email)
		if !exists {
			return fmt.Errorf("user %s not found", email)
		}
		user.Role = role
		dir.Upsert(user)
		return nil
	})
	if err != nil {
		return err
	}

	// Outstanding tokens keep their old role until they expire; the new
	// role applies from the next login.
	fmt.Printf("Role of %s set to %s (takes effect at next login)\n", email, role)
	return nil
}

func removeUser(ctx context.Context, directory *service.Directory, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: remove <email>")
	}
	email := domain.NormalizeEmail(args[0])

	fmt.Printf("Are you sure you want to remove %s? (yes/no): ", email)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return err
	}
	if strings.TrimSpace(answer) != "yes" {
		fmt.Println("Cancelled")
		return nil
	}

	err = directory.Mutate(ctx, func(dir *domain.Directory) error {
		if !dir.Remove(email) {
			return fmt.Errorf("user %s not found", email)
		}
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("User removed: %s\n", email)
	return nil
}

func listUsers(ctx context.Context, directory *service.Directory) error {
	users, err := directory.List(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Println("No users found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "EMAIL\tNAME\tROLE")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\n", u.Email, u.Name, u.Role)
	}
	return w.Flush()
}

func promptPassword() (string, error) {
	fmt.Print("Enter password: ")
	first, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	fmt.Print("Confirm password: ")
	second, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	if len(first) == 0 {
		return "", errors.New("password must not be empty")
	}
	return string(first), nil
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: manage-users [-config_folder dir] <add|set-role|remove|list> ...")
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
