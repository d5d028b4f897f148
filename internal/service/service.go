// Package service implements the conversation orchestrator and the tool
// orchestration service.
package service

import (
	"agentgate/internal/config"
	"agentgate/internal/openapi"
	"agentgate/internal/policy"
	"agentgate/internal/provider"
	"agentgate/internal/store"
)

type Service struct {
	store    store.Store
	provider provider.Provider
	specs    *openapi.Client
	policy   *policy.Engine
	config   *config.Config
	sessions sessionLocks
}

func New(db store.Store, completions provider.Provider, specs *openapi.Client, policyEngine *policy.Engine, cfg *config.Config) *Service {
	return &Service{
		store:    db,
		provider: completions,
		specs:    specs,
		policy:   policyEngine,
		config:   cfg,
	}
}
