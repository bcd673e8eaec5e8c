package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"pkt.systems/pslog"
	"pkt.systems/scout/api"
)

func newServiceCommand(logger pslog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Register and deregister services on the local agent",
	}
	cmd.AddCommand(
		newServiceRegisterCommand(logger),
		newServiceDeregisterCommand(logger),
	)
	return cmd
}

func newServiceRegisterCommand(logger pslog.Logger) *cobra.Command {
	var (
		id       string
		address  string
		port     int
		tags     []string
		httpURL  string
		script   string
		tcp      string
		ttl      string
		interval string
		timeout  string
	)
	cmd := &cobra.Command{
		Use:   "register <name>",
		Short: "Register a service, optionally with one health check",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := api.ServiceRegistration{
				ID:      id,
				Name:    args[0],
				Address: address,
				Port:    port,
				Tags:    tags,
			}
			if httpURL != "" || script != "" || tcp != "" || ttl != "" {
				svc.Check = &api.CheckDefinition{
					Name:     args[0] + " check",
					HTTP:     httpURL,
					Script:   script,
					TCP:      tcp,
					TTL:      ttl,
					Interval: interval,
					Timeout:  timeout,
				}
			}
			cli, err := newClient(logger)
			if err != nil {
				return err
			}
			defer cli.Close()
			ctx, cancel := commandContext(cmd)
			defer cancel()
			ok, err := cli.Agent.Service.Register(ctx, svc)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("service %q was not registered", args[0])
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&id, "id", "i", "", "service id (defaults to the name)")
	flags.StringVarP(&address, "address", "a", "", "address the service answers on")
	flags.IntVarP(&port, "port", "p", 0, "port the service answers on")
	flags.StringSliceVarP(&tags, "tags", "t", nil, "tags for the service")
	flags.StringVar(&httpURL, "http", "", "register an http health check against this url")
	flags.StringVar(&script, "script", "", "register a script health check running this command")
	flags.StringVar(&tcp, "tcp", "", "register a tcp health check against this host:port")
	flags.StringVar(&ttl, "ttl", "", "register a ttl health check with this duration")
	flags.StringVar(&interval, "interval", "", "probe interval for http, script and tcp checks")
	flags.StringVar(&timeout, "check-timeout", "", "probe timeout for http and tcp checks")
	return cmd
}

func newServiceDeregisterCommand(logger pslog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deregister <service-id>",
		Short: "Deregister a service from the local agent",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := newClient(logger)
			if err != nil {
				return err
			}
			defer cli.Close()
			ctx, cancel := commandContext(cmd)
			defer cancel()
			ok, err := cli.Agent.Service.Deregister(ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("service %q was not deregistered", args[0])
			}
			return nil
		},
	}
	return cmd
}
