package service

import (
	"context"

	taxdomain "github.com/smallbiznis/hotelpms/internal/tax/domain"
	"go.uber.org/fx"
)

type resolverParam struct {
	fx.In

	Repository taxdomain.Repository
}

type resolver struct {
	repo taxdomain.Repository
}

func NewResolver(p resolverParam) taxdomain.Resolver {
	return &resolver{repo: p.Repository}
}

func (r *resolver) Resolve(ctx context.Context) (taxdomain.RateSet, error) {
	taxes, err := r.repo.ListActiveTaxes(ctx)
	if err != nil {
		return taxdomain.RateSet{}, err
	}
	sc, err := r.repo.GetActiveServiceCharge(ctx)
	if err != nil {
		return taxdomain.RateSet{}, err
	}
	return taxdomain.RateSet{Taxes: taxes, ServiceCharge: sc}, nil
}
