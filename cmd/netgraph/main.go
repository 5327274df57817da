// Command netgraph synthesizes the network layer of an ECS cluster stack and emits it
// as CloudFormation, ACK manifests or an EC2 request plan.
//
// Usage:
//
//	netgraph build                      Emit the built-in stack as CloudFormation JSON
//	netgraph build -c stack.hcl -f ack  Emit ACK manifests for a config file
//	netgraph lint -c stack.yaml         Check a config for common mistakes
//	netgraph graph | dot -Tpng          Render the resource graph
//	netgraph version                    Show version
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lex00/netgraph-go/internal/ctxlog"
)

// errIssuesFound is returned when a command ran but found problems. It maps to exit code 2.
var errIssuesFound = errors.New("issues found")

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errIssuesFound) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errIssuesFound):
		return 2
	default:
		return 1
	}
}

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "netgraph",
		Short: "Synthesize ECS cluster networking as a resolved resource graph",
		Long: `netgraph builds the networking layer of an ECS cluster stack from a static
configuration: a VPC, an internet gateway, subnets, route tables and their routes,
security groups and a Fargate cluster.

Cross-references are logical names:

    subnets:
      ecs-stack-public-sn-1:
        availability_zone: us-east-1a
        cidr_block: 10.0.1.0/24
        route_table_id: ecs-stack-public-rtb

Without --config the built-in stack is used.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger := newLogger(opts.logLevel, opts.logFormat, cmd.ErrOrStderr())
			cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (.yaml, .json or .hcl); default: built-in stack")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "Log format: text or json")

	root.AddCommand(
		newBuildCmd(opts),
		newValidateCmd(opts),
		newLintCmd(opts),
		newListCmd(opts),
		newGraphCmd(opts),
		newDiffCmd(),
		newWatchCmd(opts),
		newInitCmd(),
		newVersionCmd(),
	)

	return root
}
