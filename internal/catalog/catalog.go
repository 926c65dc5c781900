package catalog

import (
	"fmt"
	"sort"
	"time"

	"ccview-smoke/internal/types"
)

const (
	dateLayout   = "2006-01-02"
	cursorLayout = "2006-01-02T15:04:05Z"

	// lookbackDays is the width of the start/end window for stat endpoints
	lookbackDays = 30
	pageLimit    = 5
)

// DateRange holds the date-derived parameters of a run. They are computed
// once at run start and shared by every endpoint that needs them.
type DateRange struct {
	Start  string
	End    string
	Cursor string
}

// NewDateRange derives the run's date parameters from now
func NewDateRange(now time.Time) DateRange {
	return DateRange{
		Start:  now.AddDate(0, 0, -lookbackDays).Format(dateLayout),
		End:    now.Format(dateLayout),
		Cursor: now.UTC().Format(cursorLayout),
	}
}

// Catalog is the ordered, read-only list of endpoints for a run
type Catalog struct {
	endpoints []types.Endpoint
}

// New validates endpoints and wraps them in a Catalog
func New(endpoints []types.Endpoint) (*Catalog, error) {
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("catalog has no endpoints")
	}

	seen := make(map[string]bool, len(endpoints))
	for i, ep := range endpoints {
		if ep.Name == "" {
			return nil, fmt.Errorf("endpoint %d: name is required", i+1)
		}
		if seen[ep.Name] {
			return nil, fmt.Errorf("endpoint %q: duplicate name", ep.Name)
		}
		seen[ep.Name] = true
		if len(ep.Path) == 0 || ep.Path[0] != '/' {
			return nil, fmt.Errorf("endpoint %q: path %q must start with /", ep.Name, ep.Path)
		}
		if ep.Category == "" {
			return nil, fmt.Errorf("endpoint %q: category is required", ep.Name)
		}
	}

	cp := make([]types.Endpoint, len(endpoints))
	copy(cp, endpoints)
	return &Catalog{endpoints: cp}, nil
}

// Len returns the number of endpoints
func (c *Catalog) Len() int {
	return len(c.endpoints)
}

// Endpoints returns a copy of the endpoints in definition order
func (c *Catalog) Endpoints() []types.Endpoint {
	cp := make([]types.Endpoint, len(c.endpoints))
	copy(cp, c.endpoints)
	return cp
}

// Categories returns the distinct categories, sorted
func (c *Catalog) Categories() []string {
	set := make(map[string]bool)
	for _, ep := range c.endpoints {
		set[ep.Category] = true
	}
	categories := make([]string, 0, len(set))
	for cat := range set {
		categories = append(categories, cat)
	}
	sort.Strings(categories)
	return categories
}

// Default builds the built-in CCView catalog for the given date range
func Default(dates DateRange) *Catalog {
	window := func() types.Params {
		return types.Params{{Key: "start", Value: dates.Start}, {Key: "end", Value: dates.End}}
	}
	page := func() types.Params {
		return types.Params{{Key: "cursor", Value: dates.Cursor}, {Key: "limit", Value: pageLimit}}
	}

	endpoints := []types.Endpoint{
		// Health & Explore
		{Name: "health_check", Path: "/api/v1/health", Category: "Health"},
		{Name: "get_network_stats", Path: "/api/v1/explore/stats", Category: "Explore"},
		{Name: "get_fee_statistics", Path: "/api/v1/explore/fee-stat", Params: window(), Category: "Explore"},
		{Name: "get_token_prices", Path: "/api/v1/explore/prices", Category: "Explore"},
		{Name: "get_supply_stats", Path: "/api/v1/explore/supply-stats", Params: window(), Category: "Explore"},

		// Governance
		{Name: "list_governances", Path: "/api/v1/governances", Params: page(), Category: "Governance"},
		{Name: "list_active_governances", Path: "/api/v1/governances/active", Params: page(), Category: "Governance"},
		{Name: "list_completed_governances", Path: "/api/v1/governances/completed", Params: page(), Category: "Governance"},
		{Name: "get_governance_statistics", Path: "/api/v1/governances/statistics", Category: "Governance"},

		// Validators
		{Name: "list_validators", Path: "/api/v1/validators", Params: page(), Category: "Validators"},
		{Name: "get_validator_statistics", Path: "/api/v1/validators/statistics", Category: "Validators"},

		// Rewards
		{Name: "list_validator_rewards", Path: "/api/v1/rewards/validator", Params: page(), Category: "Rewards"},
		{Name: "get_validator_rewards_stats", Path: "/api/v1/rewards/validator/stat", Category: "Rewards"},
		{Name: "get_top_rewarded_validators", Path: "/api/v1/rewards/validator/top-rewarded", Category: "Rewards"},

		// Token transfers
		{Name: "list_token_transfers", Path: "/api/v1/token-transfers", Params: page(), Category: "Transfers"},
		{Name: "get_token_transfer_stats", Path: "/api/v1/token-transfers/stat", Params: window(), Category: "Transfers"},

		// Updates
		{Name: "list_updates", Path: "/api/v1/updates", Params: page(), Category: "Updates"},
		{Name: "get_updates_stats", Path: "/api/v1/updates/stats", Category: "Updates"},

		// Mining rounds
		{Name: "list_mining_rounds", Path: "/api/v1/mining-rounds", Params: page(), Category: "Mining"},
		{Name: "list_active_mining_rounds", Path: "/api/v1/mining-rounds/active", Category: "Mining"},

		// Featured apps
		{Name: "list_featured_apps", Path: "/api/v1/featured-apps", Params: types.Params{{Key: "limit", Value: pageLimit}}, Category: "Apps"},

		// Search
		{Name: "general_search", Path: "/api/v1/general-search", Params: types.Params{{Key: "arg", Value: "1220"}, {Key: "limit", Value: pageLimit}}, Category: "Search"},
	}

	return &Catalog{endpoints: endpoints}
}
