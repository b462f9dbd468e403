// Command apsisctl is a client for an apsisd node: upload content and
// print the capability URN, or download content by URN.
package main

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var connect, auth, uploadData, outputPath string

	root := &cobra.Command{
		Use:   "apsisctl",
		Short: "upload and download content from an apsis node",
	}
	root.PersistentFlags().StringVarP(&connect, "connect", "c", "", "base URL of the apsisd node (required)")
	root.PersistentFlags().StringVarP(&auth, "auth", "a", "", "API authentication token")
	root.MarkPersistentFlagRequired("connect")

	upload := &cobra.Command{
		Use:   "upload [file]",
		Short: "upload inline JSON or a file and print the resulting capability URN",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) > 0 {
				path = args[0]
			}
			return runUpload(connect, auth, uploadData, path, cmd.OutOrStdout())
		},
	}
	upload.Flags().StringVarP(&uploadData, "data", "d", "", "inline JSON document to upload")

	download := &cobra.Command{
		Use:   "download <urn>",
		Short: "download content by capability or bare reference URN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(connect, args[0], outputPath, cmd.OutOrStdout())
		},
	}
	download.Flags().StringVarP(&outputPath, "output", "o", "", "write to this file instead of stdout")

	root.AddCommand(upload, download)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runUpload(connect, auth, data, path string, out io.Writer) error {
	var body bytes.Buffer
	var contentType string

	switch {
	case data != "":
		body.WriteString(data)
		contentType = "application/json"

	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()

		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("file", path)
		if err != nil {
			return fmt.Errorf("create form file: %w", err)
		}
		if _, err := io.Copy(part, f); err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if err := mw.Close(); err != nil {
			return err
		}
		contentType = mw.FormDataContentType()

	default:
		return fmt.Errorf("either --data or a file path is required")
	}

	req, err := http.NewRequest(http.MethodPost, connect+"/uri-res/R2N", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", auth)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("upload failed: %s: %s", resp.Status, respBody)
	}

	_, err = fmt.Fprintln(out, string(respBody))
	return err
}

func runDownload(connect, urn, outputPath string, out io.Writer) error {
	req, err := http.NewRequest(http.MethodGet, connect+"/uri-res/N2R?"+urn, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("download failed: %s: %s", resp.Status, body)
	}

	dst := out
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", outputPath, err)
		}
		defer f.Close()
		dst = f
	}

	_, err = io.Copy(dst, resp.Body)
	return err
}
