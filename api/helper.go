package api

import "context"

// Lookup lists used to fill filter choices.

type HelperProduct struct {
	ID   int    `json:"drugId"`
	Name string `json:"drugName"`
}

type DrugType struct {
	ID   int    `json:"drugTypeId"`
	Name string `json:"drugTypeName"`
}

type City struct {
	Name string `json:"city"`
}

func (c Client) ListHelperProducts(ctx context.Context) ([]HelperProduct, error) {
	res, err := get[[]HelperProduct](ctx, c, "/Helper/products", nil, "Failed to load products")
	if err != nil {
		return nil, err
	}
	return *res, nil
}

func (c Client) ListDrugTypes(ctx context.Context) ([]DrugType, error) {
	res, err := get[[]DrugType](ctx, c, "/Helper/drug-types", nil, "Failed to load drug types")
	if err != nil {
		return nil, err
	}
	return *res, nil
}

func (c Client) ListCities(ctx context.Context) ([]City, error) {
	res, err := get[[]City](ctx, c, "/Helper/cities", nil, "Failed to load cities")
	if err != nil {
		return nil, err
	}
	return *res, nil
}
