package billing

import (
	"context"
	"slices"
	"strconv"
)

// Catalog lists the plans on offer. An empty productID lists every plan.
type Catalog interface {
	Plans(ctx context.Context, productID string) ([]Plan, error)
}

// ProjectPlans groups prices into plans. Only prices whose product metadata
// "type" equals family are kept; an empty family keeps all of them. Plans
// keep the order in which their product was first seen, then are sorted by
// level ascending with ties left in that order.
func ProjectPlans(prices []CatalogPrice, family string) []Plan {
	plans := []Plan{}
	index := make(map[string]int)

	for _, p := range prices {
		if p.ProductID == "" {
			continue
		}
		if family != "" && p.ProductMetadata["type"] != family {
			continue
		}
		if i, ok := index[p.ProductID]; ok {
			plans[i].Prices = append(plans[i].Prices, priceOf(p))
			continue
		}
		index[p.ProductID] = len(plans)
		plans = append(plans, planOf(p))
	}

	slices.SortStableFunc(plans, func(a, b Plan) int {
		return a.Level - b.Level
	})
	return plans
}

func planOf(p CatalogPrice) Plan {
	return Plan{
		ID:          p.ProductID,
		Name:        p.ProductName,
		Description: p.ProductDescription,
		Level:       level(p.ProductMetadata),
		Prices:      []Price{priceOf(p)},
	}
}

func priceOf(p CatalogPrice) Price {
	return Price{
		ID:       p.ID,
		Price:    amount(p.UnitAmount),
		Currency: p.Currency,
		Interval: p.Interval,
	}
}

// level parses the product metadata level; anything unparsable is 0.
func level(metadata map[string]string) int {
	n, err := strconv.Atoi(metadata["level"])
	if err != nil {
		return 0
	}
	return n
}

type processorCatalog struct {
	processor Processor
	family    string
}

// NewProcessorCatalog reads plans straight from the processor.
func NewProcessorCatalog(p Processor, family string) Catalog {
	if p == nil {
		panic("billing: nil processor")
	}
	return &processorCatalog{processor: p, family: family}
}

func (c *processorCatalog) Plans(ctx context.Context, productID string) ([]Plan, error) {
	prices, err := c.processor.ListPrices(ctx, productID)
	if err != nil {
		return nil, err
	}
	return ProjectPlans(prices, c.family), nil
}
