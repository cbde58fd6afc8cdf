package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/spf13/cobra"

	"github.com/sir_venger/missionfiles/pkg/downloadclient"
)

var (
	baseURL   string
	sessionID string
	rangeHdr  string
	output    string
	inline    bool
	split     bool
	quiet     bool
	timeout   time.Duration
)

var rootCmd = &cobra.Command{
	Use:          "fetch <path>",
	Short:        "Download a mission recording, or byte ranges of it",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := []downloadclient.Option{}
		if timeout > 0 {
			opts = append(opts, downloadclient.WithHTTPClient(&http.Client{Timeout: timeout}))
		}
		if !quiet {
			opts = append(opts, downloadclient.WithProgress(os.Stderr))
		}
		client := downloadclient.New(baseURL, opts...)

		resp, err := client.Get(cmd.Context(), downloadclient.Request{
			Path:      args[0],
			SessionID: sessionID,
			Range:     rangeHdr,
			Inline:    inline,
		})
		if err != nil {
			return err
		}

		if output == "" {
			output = path.Base(args[0])
		}
		if split {
			return writeParts(resp, output)
		}
		return writeBody(resp, output)
	},
}

func init() {
	rootCmd.Flags().StringVar(&baseURL, "url", "http://localhost:8000", "service base URL")
	rootCmd.Flags().StringVar(&sessionID, "session", os.Getenv("MISSIONFILES_SESSION"), "session id")
	rootCmd.Flags().StringVarP(&rangeHdr, "range", "r", "", `Range header, e.g. "bytes=0-1023,-512"`)
	rootCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: base name of path, - for stdout)")
	rootCmd.Flags().BoolVar(&inline, "stream", false, "use the inline stream endpoint")
	rootCmd.Flags().BoolVar(&split, "split", false, "write every range of a multipart answer to its own file")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "no progress bar")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 0, "overall request timeout")
}

func writeBody(resp *downloadclient.Response, name string) error {
	defer resp.Body.Close()

	if name == "-" {
		_, err := io.Copy(os.Stdout, resp.Body)
		return err
	}

	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeParts сохраняет части в файлы name.0, name.1, ... и печатает их Content-Range.
func writeParts(resp *downloadclient.Response, name string) error {
	parts, err := resp.Parts()
	if err != nil {
		return err
	}
	for i, p := range parts {
		partName := fmt.Sprintf("%s.%d", name, i)
		if err := os.WriteFile(partName, p.Data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s\t%s\t%d bytes\n", partName, p.ContentRange, len(p.Data))
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
