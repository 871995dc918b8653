// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/teradata-labs/assay/pkg/pricing"
)

var modelsCmd = &cobra.Command{
	Use:   "models [provider]",
	Short: "List known models and their pricing",
	Long: `List the models the cost accounting knows about, with context
window sizes and USD prices per million tokens. Models outside this
table still work; their cost is reported as zero.

Examples:
  assay models
  assay models anthropic`,
	Args: cobra.MaximumNArgs(1),
	Run:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, args []string) {
	registry := pricing.NewRegistry()

	providers := registry.Providers()
	if len(args) == 1 {
		provider := args[0]
		if len(registry.ModelsFor(provider)) == 0 {
			fmt.Fprintf(os.Stderr, "Unknown provider: %s\n", provider)
			fmt.Fprintf(os.Stderr, "Known providers:\n")
			for _, p := range providers {
				fmt.Fprintf(os.Stderr, "  - %s\n", p)
			}
			os.Exit(1)
		}
		providers = []string{provider}
	}

	for _, provider := range providers {
		fmt.Printf("%s:\n", provider)
		for _, m := range registry.ModelsFor(provider) {
			fmt.Printf("  %-48s %-28s %7dk ctx  $%.2f in / $%.2f out per 1M\n",
				m.ID, m.Name, m.ContextWindow/1000, m.InputPer1M, m.OutputPer1M)
		}
		fmt.Println()
	}
}
