// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"weekend-planner/pkg/registry"
)

const defaultRegistryPath = "configs/venues.json"

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)

	// Add command flags
	addPath := addCmd.String("path", defaultRegistryPath, "Path to registry file")
	idAdd := addCmd.String("id", "", "Venue ID (e.g., columbus-zoo)")
	toolName := addCmd.String("toolName", "", "Tool name the model calls (e.g., get_columbus_zoo_events)")
	displayName := addCmd.String("displayName", "", "Display Name (e.g., Columbus Zoo Events)")
	description := addCmd.String("description", "", "Description")
	url := addCmd.String("url", "", "Events page URL")
	venue := addCmd.String("venue", "", "Venue name written into every event")
	address := addCmd.String("address", "", "Venue address")
	focus := addCmd.String("focus", "", "Comma-separated extraction focus hints")
	tags := addCmd.String("tags", "", "Comma-separated tags")
	disabled := addCmd.Bool("disabled", false, "Add the venue disabled")

	// Update command flags
	updatePath := updateCmd.String("path", defaultRegistryPath, "Path to registry file")
	idUpdate := updateCmd.String("id", "", "Venue ID to update")
	field := updateCmd.String("field", "", "Field to update (enabled, url, tags, etc.)")
	value := updateCmd.String("value", "", "New value for the field")

	validatePath := validateCmd.String("path", defaultRegistryPath, "Path to registry file")
	listPath := listCmd.String("path", defaultRegistryPath, "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *idAdd == "" || *toolName == "" || *url == "" || *venue == "" {
			fmt.Println("Error: id, toolName, url, and venue are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		v := registry.Venue{
			ID:          *idAdd,
			ToolName:    *toolName,
			DisplayName: *displayName,
			Description: *description,
			URL:         *url,
			Venue:       *venue,
			Address:     *address,
			Focus:       splitFlag(*focus),
			Tags:        splitFlag(*tags),
			Enabled:     !*disabled,
		}
		if err := addVenue(*addPath, v); err != nil {
			fmt.Printf("Error adding venue: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added venue: %s\n", *idAdd)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" {
			fmt.Println("Error: id and field are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateVenue(*updatePath, *idUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating venue: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated venue %s, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		reg, err := registry.LoadRegistry(*validatePath)
		if err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		if len(reg.Enabled()) == 0 {
			fmt.Println("Registry validation failed: no enabled venues")
			os.Exit(1)
		}
		fmt.Printf("Registry validation passed. Found %d venues, %d enabled.\n", len(reg.Venues), len(reg.Enabled()))

	case "list":
		listCmd.Parse(os.Args[2:])
		reg, err := registry.LoadRegistry(*listPath)
		if err != nil {
			fmt.Printf("Error loading registry: %v\n", err)
			os.Exit(1)
		}
		for _, v := range reg.Venues {
			state := "enabled"
			if !v.Enabled {
				state = "disabled"
			}
			fmt.Printf("%-24s %-36s %-8s %s\n", v.ID, v.ToolName, state, v.URL)
		}

	case "help":
		fallthrough
	default:
		help()
	}
}

func addVenue(path string, v registry.Venue) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		// If file doesn't exist, create new registry
		if os.IsNotExist(err) {
			reg = registry.NewVenueRegistry(time.Now())
		} else {
			return fmt.Errorf("failed to load registry: %w", err)
		}
	}

	if err := reg.AddVenue(v, time.Now()); err != nil {
		return err
	}
	return registry.SaveRegistry(reg, path)
}

func updateVenue(path, id, field, value string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.UpdateVenue(id, field, value, time.Now()); err != nil {
		return err
	}
	return registry.SaveRegistry(reg, path)
}

func splitFlag(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  add      Add a venue fetch tool to the registry
  update   Update an existing venue's field
  validate Validate the registry file
  list     List venues and their tool names
  help     Show this help message

Examples:
  registry-updater add -id cosi -toolName get_cosi_events -url https://cosi.org/events -venue COSI -tags indoor,science
  registry-updater update -id kings-island -field enabled -value false
  registry-updater validate -path configs/venues.json

Use 'registry-updater <command> -h' for more information about a command.
`)
}
