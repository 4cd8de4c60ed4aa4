package directory

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	directoryerrors "go-hrflow/internal/directory/errors"
	"go-hrflow/internal/domain"
	"go-hrflow/internal/rbac"
	"go-hrflow/internal/workflow"
	workflowerrors "go-hrflow/internal/workflow/errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// actorCacheTTL bounds how long a revoked role keeps its authority.
const (
	ActorKeyPrefix = "directory:actor:"
	actorCacheTTL  = 30 * time.Second
)

func ActorCacheKey(companyID, employeeID string) string {
	return ActorKeyPrefix + companyID + ":" + employeeID
}

// RoleChecker is satisfied by rbac.Service.
type RoleChecker interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

//go:generate mockgen -source=directory_service.go -destination=mock/directory_service_mock.go -package=mock
type Service interface {
	GetByID(ctx context.Context, companyID, id string) (*Employee, error)
	NamesByID(ctx context.Context, companyID string, ids []string) (map[string]string, error)
	ListOnProbation(ctx context.Context, companyID string) ([]Employee, error)
	// ResolveActor implements workflow.Directory.
	ResolveActor(ctx context.Context, companyID, employeeID string) (workflow.Actor, error)
}

type service struct {
	repo   Repository
	roles  RoleChecker
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(repo Repository, roles RoleChecker, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("directory.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("directory.service")
	}
	return &service{
		repo:   repo,
		roles:  roles,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (*Employee, error) {
	e, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return e, nil
}

func (s *service) NamesByID(ctx context.Context, companyID string, ids []string) (map[string]string, error) {
	emps, err := s.repo.FindByIDs(ctx, companyID, ids)
	if err != nil {
		s.logger.Error("lookup employee names failed", zap.String("company_id", companyID), zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	names := make(map[string]string, len(emps))
	for _, e := range emps {
		names[e.ID.String()] = e.FullName
	}
	return names, nil
}

func (s *service) ListOnProbation(ctx context.Context, companyID string) ([]Employee, error) {
	emps, err := s.repo.FindOnProbation(ctx, companyID)
	if err != nil {
		s.logger.Error("list employees on probation failed", zap.String("company_id", companyID), zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return emps, nil
}

func (s *service) ResolveActor(ctx context.Context, companyID, employeeID string) (workflow.Actor, error) {
	cacheKey := ActorCacheKey(companyID, employeeID)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var actor workflow.Actor
			if json.Unmarshal(cached, &actor) == nil {
				return actor, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		actor, err := s.loadActor(ctx, companyID, employeeID)
		if err != nil {
			return nil, err
		}

		if s.rdb != nil {
			if payload, err := json.Marshal(actor); err == nil {
				if err := s.rdb.Set(ctx, cacheKey, payload, actorCacheTTL).Err(); err != nil {
					s.logger.Warn("cache actor failed", zap.String("key", cacheKey), zap.Error(err))
				}
			}
		}
		return actor, nil
	})
	if err != nil {
		return workflow.Actor{}, err
	}
	return v.(workflow.Actor), nil
}

func (s *service) loadActor(ctx context.Context, companyID, employeeID string) (workflow.Actor, error) {
	e, err := s.repo.FindByIDAndCompany(ctx, companyID, employeeID)
	if err != nil {
		mapped := mapRepositoryError(err)
		if errors.Is(mapped, directoryerrors.ErrEmployeeNotFound) || errors.Is(mapped, directoryerrors.ErrInvalidEmployeeID) {
			s.logger.Warn("actor not in company",
				zap.String("company_id", companyID),
				zap.String("employee_id", employeeID),
			)
			return workflow.Actor{}, workflowerrors.ErrActorNotFound
		}
		s.logger.Error("load actor failed", zap.Error(err))
		return workflow.Actor{}, mapped
	}

	check := func(action string) (bool, error) {
		return s.roles.Enforce(domain.EnforceRequest{
			EmployeeID: employeeID,
			CompanyID:  companyID,
			Resource:   rbac.ResourceApproval,
			Action:     action,
		})
	}

	actor := workflow.Actor{ID: e.ID.String()}
	if actor.IsAdmin, err = check(rbac.ActionAdminister); err != nil {
		return workflow.Actor{}, err
	}
	if actor.IsHR, err = check(rbac.ActionActAsHR); err != nil {
		return workflow.Actor{}, err
	}
	additional, err := check(rbac.ActionAdditionalApprove)
	if err != nil {
		return workflow.Actor{}, err
	}
	if additional && e.Jurisdiction != "" {
		actor.AdditionalApproverFor = []string{strings.ToUpper(e.Jurisdiction)}
	}
	return actor, nil
}
