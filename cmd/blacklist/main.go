// Command blacklist manages the barred customer name list from the shell.
//
// Usage:
//
//	blacklist add [-reason "..."] <name>
//	blacklist remove <name>
//	blacklist list
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"coupondesk/internal/blacklist"
	"coupondesk/internal/config"
	"coupondesk/internal/database"
	"coupondesk/internal/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: blacklist <add|remove|list> [arguments]")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	repo := repository.NewBlacklistRepository(pool, logger)
	checker := blacklist.NewChecker(repo, blacklist.DefaultTTL, logger)

	switch os.Args[1] {
	case "add":
		addCmd := flag.NewFlagSet("add", flag.ExitOnError)
		reason := addCmd.String("reason", "", "why the name is barred")
		if err := addCmd.Parse(os.Args[2:]); err != nil {
			return err
		}
		name := addCmd.Arg(0)
		if name == "" {
			return fmt.Errorf("usage: blacklist add [-reason \"...\"] <name>")
		}

		created, err := checker.Add(ctx, name, *reason)
		if err != nil {
			return err
		}
		if created {
			fmt.Printf("added %q to the blacklist\n", blacklist.NormalizeName(name))
		} else {
			fmt.Printf("updated existing blacklist entry %q\n", blacklist.NormalizeName(name))
		}

	case "remove":
		if len(os.Args) < 3 {
			return fmt.Errorf("usage: blacklist remove <name>")
		}
		name := os.Args[2]

		removed, err := checker.Remove(ctx, name)
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("%q is not on the blacklist", blacklist.NormalizeName(name))
		}
		fmt.Printf("removed %q from the blacklist\n", blacklist.NormalizeName(name))

	case "list":
		entries, err := checker.Entries(ctx)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("the blacklist is empty")
			return nil
		}
		for _, e := range entries {
			if e.Reason != nil && *e.Reason != "" {
				fmt.Printf("%s\t%s\n", e.Name, *e.Reason)
			} else {
				fmt.Println(e.Name)
			}
		}

	default:
		return fmt.Errorf("unknown command %q (expected add, remove or list)", os.Args[1])
	}

	return nil
}
