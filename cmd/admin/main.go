// Package main provides account management utilities for IM Hub.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"imhub/internal/config"
	"imhub/internal/database"
	"imhub/internal/models"
	"imhub/internal/repository"
	"imhub/internal/service"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin create <username> <password> [admin] - Create an account")
	fmt.Println("  go run ./cmd/admin promote <username>                   - Grant admin")
	fmt.Println("  go run ./cmd/admin demote <username>                    - Revoke admin")
	fmt.Println("  go run ./cmd/admin disable <username>                   - Deactivate an account")
	fmt.Println("  go run ./cmd/admin password <username> <password>       - Reset a password")
	fmt.Println("  go run ./cmd/admin list                                 - List accounts")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	repo := repository.NewUserRepository(db)
	users := service.NewUserService(repo, cfg.BcryptCost)
	ctx := context.Background()

	if err := run(ctx, repo, users, os.Args[1:]); err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, repo repository.UserRepository, users *service.UserService, args []string) error {
	need := func(n int) error {
		if len(args) < n {
			usage()
			return fmt.Errorf("missing arguments for %s", args[0])
		}
		return nil
	}

	switch args[0] {
	case "create":
		if err := need(3); err != nil {
			return err
		}
		isAdmin := len(args) > 3 && strings.EqualFold(args[3], "admin")
		user, err := users.CreateUser(ctx, service.CreateUserInput{
			Username: args[1],
			Password: args[2],
			IsAdmin:  isAdmin,
		})
		if err != nil {
			return err
		}
		fmt.Printf("✅ Created %s (ID: %d, admin: %t)\n", user.Username, user.ID, user.IsAdmin)

	case "promote", "demote":
		if err := need(2); err != nil {
			return err
		}
		user, err := lookup(ctx, repo, args[1])
		if err != nil {
			return err
		}
		grant := args[0] == "promote"
		if user.IsAdmin == grant {
			fmt.Printf("User %s (ID: %d) already has admin=%t\n", user.Username, user.ID, grant)
			return nil
		}
		if _, err := users.SetAdmin(ctx, user.ID, grant); err != nil {
			return err
		}
		fmt.Printf("✅ %s %s (ID: %d)\n", map[bool]string{true: "Promoted", false: "Demoted"}[grant], user.Username, user.ID)

	case "disable":
		if err := need(2); err != nil {
			return err
		}
		user, err := lookup(ctx, repo, args[1])
		if err != nil {
			return err
		}
		inactive := false
		if _, err := users.UpdateUser(ctx, user.ID, service.UpdateUserInput{IsActive: &inactive}); err != nil {
			return err
		}
		fmt.Printf("✅ Disabled %s (ID: %d)\n", user.Username, user.ID)

	case "password":
		if err := need(3); err != nil {
			return err
		}
		user, err := lookup(ctx, repo, args[1])
		if err != nil {
			return err
		}
		if _, err := users.UpdateUser(ctx, user.ID, service.UpdateUserInput{Password: &args[2]}); err != nil {
			return err
		}
		fmt.Printf("✅ Password reset for %s\n", user.Username)

	case "list":
		all, err := users.ListUsers(ctx)
		if err != nil {
			return err
		}
		printUsers(all)

	default:
		usage()
		return fmt.Errorf("unknown command: %s", args[0])
	}
	return nil
}

func lookup(ctx context.Context, repo repository.UserRepository, username string) (*models.User, error) {
	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %q not found", username)
	}
	return user, nil
}

func printUsers(users []models.User) {
	if len(users) == 0 {
		fmt.Println("No accounts found")
		return
	}

	fmt.Println("\n📋 Accounts:")
	fmt.Println("─────────────────────────────────────")
	for _, u := range users {
		fmt.Printf("ID: %d | Username: %s | Admin: %t | Active: %t\n", u.ID, u.Username, u.IsAdmin, u.IsActive)
	}
	fmt.Println("─────────────────────────────────────")
}
