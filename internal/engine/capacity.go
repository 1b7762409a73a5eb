package engine

// infraCapacity maps each infrastructure service to its additive capacity
// contribution. Unknown services contribute nothing.
var infraCapacity = map[string]int64{
	"EC2":            10_000,
	"Route53":        5_000,
	"CloudWatch":     5_000,
	"RDS":            15_000,
	"S3":             15_000,
	"AutoScaling":    40_000,
	"ECS":            30_000,
	"Aurora":         50_000,
	"Redis":          30_000,
	"EKS":            60_000,
	"Karpenter":      40_000,
	"Lambda":         40_000,
	"Bedrock":        30_000,
	"AuroraGlobalDB": 80_000,
	"CloudFront":     50_000,
	"DRConfigured":   30_000,
	"MultiRegion":    100_000,
}

const consultingMultiplier = 3

// ComputeCapacity sums the difficulty baseline with every owned service's
// contribution. The consulting flag is a standing multiplier: it survives
// later infrastructure additions rather than being re-derived from them.
func ComputeCapacity(base int64, infrastructure []string, consulting bool) int64 {
	capacity := base
	for _, id := range infrastructure {
		capacity += infraCapacity[id]
	}
	if consulting {
		capacity *= consultingMultiplier
	}
	return capacity
}

// KnownInfra reports whether id contributes capacity. The catalog validator
// uses it to catch typos in content.
func KnownInfra(id string) bool {
	_, ok := infraCapacity[id]
	return ok
}

func recomputeCapacity(g *GameState) {
	g.MaxUserCapacity = ComputeCapacity(ConfigFor(g.Difficulty).BaseCapacity, g.Infrastructure, g.Consulting)
}
