package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/AyGoub/gramview/internal/update"
)

// runUpdate checks for a newer release and optionally installs it.
func runUpdate(args []string) {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	checkOnly := fs.Bool("check", false,
		"check for updates without installing")
	yes := fs.Bool("yes", false,
		"install without confirmation prompt")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parsing flags: %v", err)
	}

	fmt.Printf("Current version: %s\n", version)

	info, err := update.Check(version)
	if err != nil {
		log.Fatalf("checking for updates: %v", err)
	}
	if info == nil {
		fmt.Println("Already up to date.")
		return
	}

	fmt.Printf("New version available: %s (%s, %s)\n",
		info.LatestVersion, info.AssetName,
		update.FormatSize(info.Size))

	if *checkOnly {
		fmt.Println("Run 'gramview update' to install.")
		return
	}

	if update.IsDevBuild(version) && !*yes {
		fmt.Println("This is a dev build; pass -yes to overwrite it.")
		return
	}

	if !*yes && !confirm("Install now? [y/N] ") {
		fmt.Println("Update cancelled.")
		return
	}

	if err := update.Install(info); err != nil {
		log.Fatalf("installing update: %v", err)
	}
	fmt.Printf("Updated to %s.\n", info.LatestVersion)
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes"
}
