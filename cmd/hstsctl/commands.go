// Copyright 2024 The gohsts Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/go-http-utils/hsts"
)

var dbFile string

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hstsctl",
		Short: "Inspect and edit a Known HSTS Hosts database",
		Long: `hstsctl reads and writes the same line-oriented HSTS database
file an HTTP client built on the hsts package uses. It is meant for
operators debugging why a request did or didn't get upgraded to
HTTPS, without having to instrument the client itself.`,
	}

	var pf *pflag.FlagSet = root.PersistentFlags()
	pf.StringVar(&dbFile, "file", hsts.DefaultPath(), "path to the HSTS database file")

	root.AddCommand(listCmd(), matchCmd(), pruneCmd())
	return root
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every Known HSTS Host in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := hsts.Open(hsts.WithPath(dbFile))
			defer s.Close()
			for _, r := range s.List() {
				host := r.Host
				if r.Port != 0 {
					host = fmt.Sprintf("%s:%d", r.Host, r.Port)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tincludeSubDomains=%t\tmax-age=%d\n",
					host, r.IncludeSubDomains, r.MaxAge)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d known host(s) in %s\n", s.Count(), dbFile)
			return nil
		},
	}
}

func matchCmd() *cobra.Command {
	var raw string
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Show whether a URL would be rewritten to HTTPS",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := url.Parse(raw)
			if err != nil {
				return fmt.Errorf("parsing url: %w", err)
			}
			s := hsts.Open(hsts.WithPath(dbFile))
			defer s.Close()
			if s.Match(u) {
				fmt.Fprintf(cmd.OutOrStdout(), "rewrite -> %s\n", u.String())
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "no rewrite")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&raw, "url", "", "the request URL to test")
	cmd.MarkFlagRequired("url")
	return cmd
}

func pruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Load the database, drop expired entries, and save",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := hsts.Open(hsts.WithPath(dbFile))
			defer s.Close()
			removed := s.Prune()
			s.Save()
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired host(s), %d remain\n", removed, s.Count())
			return nil
		},
	}
}
