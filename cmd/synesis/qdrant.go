// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kosmos/synesis/internal/container"
)

const (
	qdrantImage     = "qdrant/qdrant"
	qdrantContainer = "synesis-qdrant"
)

var qdrantPorts = []string{"6333:6333", "6334:6334"}

var qdrantCmd = &cobra.Command{
	Use:   "qdrant",
	Short: "Manage a local Qdrant server for the qdrant store backend",
	Long: `Qdrant starts or stops a local Qdrant container for use with the
qdrant vector store backend (index.store: qdrant, index.qdrant_url:
http://localhost:6333). Requires docker or podman.`,
}

var qdrantUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Start the local Qdrant container",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := container.DetectRuntime()
		if err != nil {
			return err
		}
		if rt.Running(qdrantContainer) {
			fmt.Printf("%s already running\n", qdrantContainer)
			return nil
		}
		if err := rt.StartDetached(qdrantImage, qdrantContainer, qdrantPorts); err != nil {
			return err
		}
		fmt.Printf("Started %s via %s on ports %v\n", qdrantContainer, rt.Name(), qdrantPorts)
		return nil
	},
}

var qdrantDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Stop the local Qdrant container",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := container.DetectRuntime()
		if err != nil {
			return err
		}
		if !rt.Running(qdrantContainer) {
			fmt.Printf("%s is not running\n", qdrantContainer)
			return nil
		}
		if err := rt.Stop(qdrantContainer); err != nil {
			return err
		}
		fmt.Printf("Stopped %s\n", qdrantContainer)
		return nil
	},
}

func init() {
	qdrantCmd.AddCommand(qdrantUpCmd)
	qdrantCmd.AddCommand(qdrantDownCmd)
	rootCmd.AddCommand(qdrantCmd)
}
