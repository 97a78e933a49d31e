package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/ezdota/internal/config"
	"github.com/derickschaefer/ezdota/internal/model"
	"github.com/derickschaefer/ezdota/internal/render"
	"github.com/derickschaefer/ezdota/internal/window"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage ezdota configuration",
	Long: `Read and write ezdota configuration stored in config.json.

Values are resolved in this order, later sources winning:
  built-in defaults, config.json, .env, environment variables, flags.`,
}

// ─── config init ──────────────────────────────────────────────────────────────

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a template config.json in the current directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigFile
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config.json already exists at %s (delete it first to re-initialise)", path)
		}
		if err := config.WriteFile(path, config.Template()); err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "✓ Created %s\n", path)
		fmt.Fprintln(w, "  Edit it and set your player_id to get started.")
		fmt.Fprintln(w, "  Your account id is the number in your OpenDota profile URL.")
		return nil
	},
}

// ─── config get ───────────────────────────────────────────────────────────────

var configGetShowSecrets bool

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print the resolved configuration, or a single key",
	Example: `  ezdota config get
  ezdota config get workdays
  ezdota config get --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		value := func(key string) string {
			if key == "api_key" {
				v := cfg.RedactedAPIKey()
				if configGetShowSecrets {
					v = cfg.APIKey
				}
				if v == "" {
					v = "(not set)"
				}
				return v
			}
			v, _ := cfg.Get(key)
			return v
		}

		if len(args) == 1 {
			key := strings.ToLower(args[0])
			if _, ok := cfg.Get(key); !ok {
				return fmt.Errorf("unknown config key: %q\n\nValid keys: %s", key, strings.Join(config.Keys(), ", "))
			}
			fmt.Fprintln(cmd.OutOrStdout(), value(key))
			return nil
		}

		src := "(not found)"
		if cfg.ConfigPath != "" {
			src = cfg.ConfigPath
		}
		rows := make([]model.KV, 0, len(config.Keys())+1)
		for _, k := range config.Keys() {
			rows = append(rows, model.KV{Key: k, Value: value(k)})
		}
		rows = append(rows, model.KV{Key: "config_file", Value: src})

		format := cfg.Format
		if globalFlags.Format != "" {
			format = globalFlags.Format
		}
		if format == render.FormatTable {
			kv := make([][]string, len(rows))
			for i, r := range rows {
				kv[i] = []string{r.Key, r.Value}
			}
			printKVTableTo(cmd.OutOrStdout(), kv)
			return nil
		}
		result := &model.Result{
			Kind:        model.KindTable,
			GeneratedAt: time.Now(),
			Command:     "config get",
			Data:        rows,
			Stats:       model.ResultStats{Items: len(rows)},
		}
		return render.Render(cmd.OutOrStdout(), result, format)
	},
}

// ─── config set ───────────────────────────────────────────────────────────────

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value in config.json",
	Example: `  ezdota config set player_id 123456789
  ezdota config set workdays mon,tue,wed,thu
  ezdota config set workday_start 8`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := strings.ToLower(args[0])
		val := args[1]

		// Load existing file or start from template
		var f config.File
		existing, path, err := loadConfigFile()
		switch {
		case errors.Is(err, os.ErrNotExist):
			path = config.DefaultConfigFile
			f = config.Template()
		case err != nil:
			return fmt.Errorf("reading %s: %w", config.DefaultConfigFile, err)
		default:
			f = *existing
		}

		if err := setFileKey(&f, key, val); err != nil {
			return err
		}
		if err := config.WriteFile(path, f); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Set %s in %s\n", key, path)
		return nil
	},
}

// setFileKey parses val for key and stores it in f.
func setFileKey(f *config.File, key, val string) error {
	switch key {
	case "player_id":
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("player_id must be a positive integer")
		}
		f.PlayerID = n
	case "api_key":
		f.APIKey = val
	case "default_format", "format":
		if !render.ValidFormat(val) {
			return fmt.Errorf("invalid format %q: expected one of %v", val, render.Formats)
		}
		f.DefaultFormat = val
	case "timeout":
		if _, err := time.ParseDuration(val); err != nil {
			return fmt.Errorf("timeout must be a duration like 30s: %w", err)
		}
		f.Timeout = val
	case "rate":
		r, err := strconv.ParseFloat(val, 64)
		if err != nil || r <= 0 {
			return fmt.Errorf("rate must be a positive number")
		}
		f.Rate = r
	case "base_url":
		f.BaseURL = val
	case "db_path":
		f.DBPath = val
	case "archive_path":
		f.ArchivePath = val
	case "match_limit":
		n, err := strconv.Atoi(val)
		if err != nil || n <= 0 {
			return fmt.Errorf("match_limit must be a positive integer")
		}
		f.MatchLimit = n
	case "filter_mode", "mode":
		m, err := window.ParseMode(val)
		if err != nil {
			return err
		}
		f.FilterMode = string(m)
	case "workday_start", "workday_end":
		h, err := strconv.Atoi(val)
		if err != nil || h < 0 || h > 24 {
			return fmt.Errorf("%s must be an hour between 0 and 24", key)
		}
		if key == "workday_start" {
			f.WorkdayStart = &h
		} else {
			f.WorkdayEnd = &h
		}
	case "workdays":
		if _, err := window.ParseWeekdays(val); err != nil {
			return err
		}
		f.Workdays = val
	case "timezone":
		if _, err := time.LoadLocation(val); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", val, err)
		}
		f.Timezone = val
	case "listen_addr":
		f.ListenAddr = val
	default:
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s", key, strings.Join(config.Keys(), ", "))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)

	configGetCmd.Flags().BoolVar(&configGetShowSecrets, "show-secrets", false, "show API key in plain text")
}

// loadConfigFile reads config.json from cwd; used by configSetCmd.
func loadConfigFile() (*config.File, string, error) {
	path := config.DefaultConfigFile
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	var f config.File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, "", err
	}
	return &f, path, nil
}
