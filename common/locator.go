package common

import "fmt"

// Strategy is a locator strategy by its wire name.
type Strategy string

// Supported locator strategies.
const (
	StrategyID              Strategy = "id"
	StrategyName            Strategy = "name"
	StrategyClassName       Strategy = "class name"
	StrategyCSS             Strategy = "css selector"
	StrategyXPath           Strategy = "xpath"
	StrategyLinkText        Strategy = "link text"
	StrategyPartialLinkText Strategy = "partial link text"
	StrategyTagName         Strategy = "tag name"
)

// criteriaKeys maps wire names to the keys the criteria atom understands.
var criteriaKeys = map[Strategy]string{
	StrategyID:              "id",
	StrategyName:            "name",
	StrategyClassName:       "className",
	StrategyCSS:             "css",
	StrategyXPath:           "xpath",
	StrategyLinkText:        "linkText",
	StrategyPartialLinkText: "partialLinkText",
	StrategyTagName:         "tagName",
}

// Locator pairs a strategy with its criteria. It lives for one find call.
type Locator struct {
	Strategy Strategy
	Criteria string
}

// NewLocator validates the wire strategy name.
func NewLocator(using, value string) (Locator, error) {
	s := Strategy(using)
	if _, ok := criteriaKeys[s]; !ok {
		return Locator{}, fmt.Errorf("unsupported locator strategy %q", using)
	}
	return Locator{Strategy: s, Criteria: value}, nil
}

// CriteriaKey returns the key used for the strategy in the criteria object.
func (l Locator) CriteriaKey() string {
	return criteriaKeys[l.Strategy]
}

func (l Locator) String() string {
	return fmt.Sprintf("%s=%q", l.Strategy, l.Criteria)
}
