package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"deskvox/internal/config"
	"deskvox/internal/ipc"
)

type sender func(ctx context.Context, msg ipc.ControlMessage) (ipc.ControlReply, error)

// newRootCmd wires the control CLI. With send nil, commands go to the
// daemon socket named by --socket or the config file.
func newRootCmd(send sender) *cobra.Command {
	var socket, cfgPath string

	root := &cobra.Command{
		Use:           "deskvox-ctl",
		Short:         "Control a running deskvox daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&socket, "socket", "s", "", "Control socket path (default from config)")
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Config file path")

	if send == nil {
		send = func(ctx context.Context, msg ipc.ControlMessage) (ipc.ControlReply, error) {
			path := socket
			if path == "" {
				cfg, err := config.Peek(cfgPath)
				if err != nil {
					return ipc.ControlReply{}, err
				}
				path = cfg.Socket
			}
			reply, err := ipc.SendCommand(ctx, path, msg)
			if err != nil {
				return reply, fmt.Errorf("deskvox not running: %w", err)
			}
			return reply, nil
		}
	}

	root.AddCommand(
		simpleCommand(send, "listen", "Listen for one spoken command"),
		textCommand(send, "say <text>", "say", "Submit text as if it was typed"),
		textCommand(send, "listen-file <path>", "listen-file", "Transcribe an audio file and run it as a command"),
		simpleCommand(send, "status", "Show preferences and pending state"),
		simpleCommand(send, "history", "Show recorded commands"),
		simpleCommand(send, "phrases", "Show the phrase table in match order"),
		textCommand(send, "theme <light|dark>", "theme", "Switch the color theme"),
		textCommand(send, "rate <words-per-minute>", "rate", "Set the speech rate"),
		textCommand(send, "name <name>", "name", "Set how the assistant addresses you"),
		simpleCommand(send, "quit", "Stop the daemon"),
	)
	return root
}

func simpleCommand(send sender, name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return exchange(cmd, send, ipc.ControlMessage{Cmd: name})
		},
	}
}

func textCommand(send sender, use, name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return exchange(cmd, send, ipc.ControlMessage{Cmd: name, Text: strings.Join(args, " ")})
		},
	}
}

func exchange(cmd *cobra.Command, send sender, msg ipc.ControlMessage) error {
	reply, err := send(cmd.Context(), msg)
	if err != nil {
		return err
	}
	render(cmd.OutOrStdout(), reply)
	if !reply.OK {
		return errors.New(reply.Message)
	}
	return nil
}

func render(w io.Writer, r ipc.ControlReply) {
	switch {
	case r.Status != nil:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "session\t%s\n", r.Status.ID)
		fmt.Fprintf(tw, "name\t%s\n", r.Status.Name)
		fmt.Fprintf(tw, "theme\t%s\n", r.Status.Theme)
		fmt.Fprintf(tw, "speech rate\t%d\n", r.Status.SpeechRate)
		fmt.Fprintf(tw, "language\t%s\n", r.Status.Language)
		fmt.Fprintf(tw, "pending\t%s\n", r.Status.Pending)
		fmt.Fprintf(tw, "history\t%d\n", r.Status.History)
		tw.Flush()
	case r.History != nil:
		for i, h := range r.History {
			fmt.Fprintf(w, "%3d  %s\n", i+1, h)
		}
	case r.Phrases != nil:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, p := range r.Phrases {
			fmt.Fprintf(tw, "%s\t%s\n", p.Text, p.Intent)
		}
		tw.Flush()
	case r.OK && r.Message != "":
		fmt.Fprintln(w, r.Message)
	}
}
