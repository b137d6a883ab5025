// Copyright 2025 The Foldsum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/foldlabs/foldsum/pkg/fold"
	"github.com/foldlabs/foldsum/pkg/sha256"
)

const optionNameTrace = "trace"

func (c *command) initHashCmd() (err error) {

	cmd := &cobra.Command{
		Use:   "hash [message]",
		Short: "Compute the fold digest of a message",
		Long: `Computes the fold digest and the plain SHA-256 digest of the message
given as the single argument, or of data read from standard input when
no argument is given.`,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if len(args) > 1 {
				return cmd.Help()
			}

			var msg []byte
			if len(args) == 1 {
				msg = []byte(args[0])
			} else {
				msg, err = io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read standard input: %w", err)
				}
			}

			var (
				res      *fold.Result
				standard sha256.State
			)
			var g errgroup.Group
			g.Go(func() error {
				var err error
				res, err = fold.New(c.config.GetInt(optionNameHashWorkers)).Hash(msg)
				return err
			})
			g.Go(func() error {
				var err error
				standard, err = sha256.Sum(msg)
				return err
			})
			if err := g.Wait(); err != nil {
				return err
			}

			if c.config.GetBool(optionNameTrace) {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res.Trace)
			}

			cmd.Printf("fold:   %s\n", res.Digest)
			cmd.Printf("sha256: %s\n", standard)
			return nil
		},
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return c.config.BindPFlags(cmd.Flags())
		},
	}

	cmd.Flags().Bool(optionNameTrace, false, "print the full fold trace as json")
	cmd.Flags().Int(optionNameHashWorkers, 0, "number of block compression workers, 0 for the number of CPUs")

	c.root.AddCommand(cmd)
	return nil
}
