package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/starbase/internal/domain/catalog"
)

const catalogURI = "starbase://catalog"

const serverInstructions = `starbase runs the economy of space empires: credits, energy, citizens and three production queues.

Core concepts:
- Empire: owns credits, tech levels and colonies. Credits are paid out every tick from economy capacity.
- Base: a colony at a coordinate like A01:02:03:04. Its buildings, environment and techs give five per-hour capacities
  (construction, production, research, citizen, economy) and an energy balance.
- Queue item: a technology, unit or defense in production. Cost is charged when it starts; it completes after
  ceil(cost / capacity * 60) minutes. Technologies and defenses allow one pending item per key per base;
  units can be queued repeatedly.

Workflow:
1) get_empire to see credits, income and colonies.
2) get_base_status for a colony's capacities, energy and pending work.
3) Read starbase://catalog for item keys, costs and requirements.
4) start_production, then list_queue to follow progress. cancel_production frees the slot (refund=true returns credits).
5) list_transactions shows every credit movement.

Every tool returns {success, data} or {success:false, code, message, details, recovery_hint}.

Docs:
- starbase://catalog (JSON)
- starbase://docs/rules
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	MIMEType    string
	Content     func() (string, error)
}

const rulesDoc = `# starbase rules

## Timing

- ETA minutes = ceil(credits_cost / capacity_rate * 60), at least 1.
- The rate is the base's capacity of the kind named by the item's catalog entry (capacity field).
- A zero capacity rate means the item cannot be queued (NO_CAPACITY).

## Credits

- Start charges the full cost. Cancelling without refund keeps the credits spent.
- Payouts happen on aligned period boundaries; fractional credits carry over in thousandths.

## Energy

- Defenses and buildings that draw energy need a projected balance that stays non-negative,
  counting pending defenses as already built.

## Errors

| code | meaning |
|------|---------|
| ALREADY_IN_PROGRESS | the same item is already pending at the base |
| TECH_REQUIREMENTS | details.unmet lists the missing levels |
| INSUFFICIENT_RESOURCES | not enough credits or energy |
| NO_CAPACITY | the base has no capacity of the needed kind |
| NOT_OWNER | the coordinate is not a colony of the empire |
`

var docResources = []docResource{
	{
		URI:         catalogURI,
		Name:        "catalog",
		Title:       "starbase catalog",
		Description: "Every building, technology, unit and defense with cost, requirements and energy delta.",
		MIMEType:    "application/json",
		Content:     catalogJSON,
	},
	{
		URI:         "starbase://docs/rules",
		Name:        "rules",
		Title:       "starbase rules",
		Description: "Timing, credit and energy rules plus the error codes tools return.",
		MIMEType:    "text/markdown",
		Content:     func() (string, error) { return rulesDoc, nil },
	},
}

func catalogJSON() (string, error) {
	data, err := json.MarshalIndent(map[string]any{"items": catalog.All()}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding catalog: %w", err)
	}
	return string(data), nil
}

func registerResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		content, err := doc.Content()
		if err != nil {
			panic(err)
		}

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    doc.MIMEType,
			Size:        int64(len(content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: doc.MIMEType,
					Text:     content,
				}},
			}, nil
		})
	}
}
