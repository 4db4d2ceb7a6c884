package services

import (
	"context"
	"errors"
)

// QuoteServiceDeps bundles constructor inputs for the quote service.
type QuoteServiceDeps struct {
	Catalogs CatalogService
	Engine   *QuoteEngine
}

type quoteService struct {
	catalogs CatalogService
	engine   *QuoteEngine
}

// NewQuoteService constructs a QuoteService that resolves the catalog for the
// requested currency and prices the selection against it.
func NewQuoteService(deps QuoteServiceDeps) (QuoteService, error) {
	if deps.Catalogs == nil {
		return nil, errors.New("quote service requires catalog service")
	}
	if deps.Engine == nil {
		return nil, errors.New("quote service requires quote engine")
	}
	return &quoteService{catalogs: deps.Catalogs, engine: deps.Engine}, nil
}

func (s *quoteService) Quote(ctx context.Context, currency string, sel Selection) (Quote, error) {
	catalog, err := s.catalogs.Catalog(ctx, currency)
	if err != nil {
		return Quote{}, err
	}
	return s.engine.ComputeQuote(ctx, catalog, sel), nil
}
