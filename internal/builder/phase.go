package builder

// Phase is one stage of a synthesis pass. Phases are declared in creation order.
type Phase int

const (
	// PhaseNetwork creates the VPC. No preconditions.
	PhaseNetwork Phase = iota
	// PhaseGateway creates the internet gateway and its attachment. Requires PhaseNetwork.
	PhaseGateway
	// PhaseSubnets creates subnets with unresolved route table names. Requires PhaseNetwork.
	PhaseSubnets
	// PhaseRouteTables creates empty route tables. Requires PhaseNetwork.
	PhaseRouteTables
	// PhaseRoutes creates routes in declared order. Requires PhaseRouteTables.
	// Gateway routes additionally need an attached gateway, checked per route.
	PhaseRoutes
	// PhaseAssociations links subnets to route tables. Requires PhaseSubnets and PhaseRouteTables.
	PhaseAssociations
	// PhaseSecurityGroups creates security groups. Requires PhaseNetwork.
	PhaseSecurityGroups
	// PhaseCluster creates the ECS cluster. Requires PhaseNetwork.
	PhaseCluster
)

var phaseNames = [...]string{
	PhaseNetwork:        "Network",
	PhaseGateway:        "Gateway",
	PhaseSubnets:        "Subnets",
	PhaseRouteTables:    "RouteTables",
	PhaseRoutes:         "Routes",
	PhaseAssociations:   "Associations",
	PhaseSecurityGroups: "SecurityGroups",
	PhaseCluster:        "Cluster",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "Unknown"
	}
	return phaseNames[p]
}

// Phases returns every phase in creation order.
func Phases() []Phase {
	return []Phase{
		PhaseNetwork,
		PhaseGateway,
		PhaseSubnets,
		PhaseRouteTables,
		PhaseRoutes,
		PhaseAssociations,
		PhaseSecurityGroups,
		PhaseCluster,
	}
}

// Requires returns the phases that must have completed before p may start.
func (p Phase) Requires() []Phase {
	switch p {
	case PhaseGateway, PhaseSubnets, PhaseRouteTables, PhaseSecurityGroups, PhaseCluster:
		return []Phase{PhaseNetwork}
	case PhaseRoutes:
		return []Phase{PhaseRouteTables}
	case PhaseAssociations:
		return []Phase{PhaseSubnets, PhaseRouteTables}
	default:
		return nil
	}
}
