package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/daikw/angertranslator/internal/keystore"
)

func serviceArg(c *cli.Command) (string, error) {
	service := strings.ToLower(strings.TrimSpace(c.Args().Get(0)))
	if service == "" {
		return "", fmt.Errorf("service name is required (openai, elevenlabs, gcp, ...)")
	}
	return service, nil
}

func handleKeySet(ctx context.Context, c *cli.Command) error {
	service, err := serviceArg(c)
	if err != nil {
		return err
	}
	key := c.Args().Get(1)
	if key == "" {
		fmt.Fprintf(os.Stderr, "Enter %s API key: ", service)
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read key: %w", err)
		}
		key = strings.TrimSpace(line)
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.keys.Store(ctx, service, key, c.Duration("ttl")); err != nil {
		return err
	}
	fmt.Printf("Stored %s key %s (expires in %s)\n", service, keystore.Mask(key), c.Duration("ttl"))
	return nil
}

func handleKeyGet(ctx context.Context, c *cli.Command) error {
	service, err := serviceArg(c)
	if err != nil {
		return err
	}
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	key, ok, err := a.keys.Retrieve(ctx, service)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no %s key stored (or it expired)", service)
	}
	if c.Bool("reveal") {
		fmt.Println(key)
	} else {
		fmt.Println(keystore.Mask(key))
	}
	return nil
}

func handleKeyRemove(ctx context.Context, c *cli.Command) error {
	service, err := serviceArg(c)
	if err != nil {
		return err
	}
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.keys.Remove(ctx, service); err != nil {
		return err
	}
	fmt.Printf("Removed %s key\n", service)
	return nil
}
