package builder

import (
	"github.com/lex00/netgraph-go/internal/config"
)

// stage is one named step of the Build pipeline.
type stage struct {
	phase Phase
	run   func() error
}

// Build runs a complete synthesis pass over cfg in phase order and returns the
// resolved graph. A nil gateway skips the gateway phase; a nil cluster skips the
// cluster phase. On failure no graph is returned.
func Build(cfg *config.Config, opts ...Option) (*Graph, error) {
	s := New(append([]Option{WithTags(cfg.Tags)}, opts...)...)

	var (
		network NetworkHandle
		gateway *GatewayHandle
		subnets map[string]SubnetHandle
		tables  map[string]RouteTableHandle
	)

	stages := []stage{
		{PhaseNetwork, func() (err error) {
			network, err = s.BuildNetwork(cfg.Network)
			return err
		}},
		{PhaseGateway, func() error {
			if cfg.Gateway == nil {
				return nil
			}
			gw, err := s.AttachGateway(network, *cfg.Gateway)
			if err != nil {
				return err
			}
			gateway = &gw
			return nil
		}},
		{PhaseSubnets, func() (err error) {
			subnets, err = s.CreateSubnets(network, cfg.Subnets)
			return err
		}},
		{PhaseRouteTables, func() (err error) {
			tables, err = s.CreateRouteTables(network, cfg.RouteTableNames())
			return err
		}},
		{PhaseRoutes, func() error {
			return s.ResolveRoutes(tables, cfg.RouteTables, gateway)
		}},
		{PhaseAssociations, func() error {
			return s.AssociateSubnets(subnets, tables, cfg.Subnets)
		}},
		{PhaseSecurityGroups, func() error {
			_, err := s.CreateSecurityGroups(network, cfg.SecurityGroups)
			return err
		}},
		{PhaseCluster, func() error {
			if cfg.Cluster == nil {
				return nil
			}
			_, err := s.CreateCluster(network, *cfg.Cluster)
			return err
		}},
	}

	for _, st := range stages {
		s.logger.Debug("Running phase.", "phase", st.phase)
		if err := st.run(); err != nil {
			return nil, err
		}
	}
	return s.Graph()
}
