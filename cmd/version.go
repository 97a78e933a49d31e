package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version is the release string. Release builds overwrite it via:
//
//	go build -ldflags "-X github.com/derickschaefer/ezdota/cmd.Version=v0.3.0"
var Version = "v0.2.0"

// BuildTime is optionally injected alongside Version:
//
//	-ldflags "-X github.com/derickschaefer/ezdota/cmd.BuildTime=2026-10-01T12:00:00Z"
var BuildTime = ""

type versionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	GOOS      string `json:"goos"`
	GOARCH    string `json:"goarch"`
	BuildTime string `json:"build_time,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the ezdota version and build information",
	Long: `Print the ezdota version string and build metadata.

Default output is plain text. Use --format json for structured output.`,
	Example: `  ezdota version
  ezdota version --format json | jq .version`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := versionInfo{
			Version:   Version,
			GoVersion: runtime.Version(),
			GOOS:      runtime.GOOS,
			GOARCH:    runtime.GOARCH,
			BuildTime: BuildTime,
		}
		w := cmd.OutOrStdout()

		switch globalFlags.Format {
		case "json":
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(info)

		case "jsonl":
			b, err := json.Marshal(info)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\n", b)
			return nil

		default:
			fmt.Fprintf(w, "ezdota %s\n", info.Version)
			fmt.Fprintf(w, "go     %s\n", info.GoVersion)
			fmt.Fprintf(w, "os     %s/%s\n", info.GOOS, info.GOARCH)
			if info.BuildTime != "" {
				fmt.Fprintf(w, "built  %s\n", info.BuildTime)
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
