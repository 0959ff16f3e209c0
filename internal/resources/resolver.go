package resources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	internalErrors "github.com/jeevanjot011/bevflow/internal/lib/errors"
)

// Backend finds, creates and validates one kind of resource by logical name.
type Backend interface {
	// Lookup returns the physical address of name or ErrResourceNotFound.
	Lookup(ctx context.Context, name string) (string, error)
	Create(ctx context.Context, name string) (string, error)
	Exists(ctx context.Context, addr string) (bool, error)
}

type ParamStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
}

type Resource struct {
	Kind    string
	Name    string
	Param   string
	Backend Backend
	// Mint generates a fresh name when Name is empty.
	Mint func() string
}

type Resolver struct {
	log    *slog.Logger
	params ParamStore

	// inflight collapses concurrent resolves of the same key into one run.
	inflight singleflight.Group
}

func NewResolver(log *slog.Logger, params ParamStore) *Resolver {
	return &Resolver{
		log:    log,
		params: params,
	}
}

// Ensure looks res up by name and creates it when absent.
func (r *Resolver) Ensure(ctx context.Context, res Resource) (addr string, created bool, err error) {
	const op = "resources.Resolver.Ensure"

	log := r.log.With(slog.String("op", op), slog.String("kind", res.Kind))

	name := res.Name
	if name == "" {
		if res.Mint == nil {
			return "", false, fmt.Errorf("%s: %s: empty name", op, res.Kind)
		}

		name = res.Mint()
	} else {
		addr, err = res.Backend.Lookup(ctx, name)
		if err == nil {
			return addr, false, nil
		}
		if !internalErrors.IsNotFound(err) {
			log.Error("lookup failed", slog.String("name", name), slog.String("error", err.Error()))
			return "", false, fmt.Errorf("%s: lookup %s %s: %w", op, res.Kind, name, err)
		}
	}

	addr, err = res.Backend.Create(ctx, name)
	if err != nil {
		log.Error("create failed", slog.String("name", name), slog.String("error", err.Error()))
		return "", false, fmt.Errorf("%s: create %s %s: %w", op, res.Kind, name, err)
	}

	log.Info("created", slog.String("name", name), slog.String("addr", addr))

	return addr, true, nil
}

// Resolve returns a live address for res. The stored address is only a hint:
// it is validated, and a dangling or missing one is replaced and persisted.
// Concurrent callers for the same key share one run.
func (r *Resolver) Resolve(ctx context.Context, res Resource) (string, error) {
	addr, err, _ := r.inflight.Do(res.Kind+"|"+res.Param, func() (any, error) {
		return r.resolve(ctx, res)
	})
	if err != nil {
		return "", err
	}

	return addr.(string), nil
}

func (r *Resolver) resolve(ctx context.Context, res Resource) (string, error) {
	const op = "resources.Resolver.Resolve"

	log := r.log.With(slog.String("op", op), slog.String("kind", res.Kind))

	hint, err := r.params.Get(ctx, res.Param)
	switch {
	case err == nil:
		ok, existsErr := res.Backend.Exists(ctx, hint)
		if existsErr != nil {
			return "", fmt.Errorf("%s: validate %s %s: %w", op, res.Kind, hint, existsErr)
		}
		if ok {
			return hint, nil
		}

		log.Warn("stored address is dangling", slog.String("addr", hint))
	case errors.Is(err, internalErrors.ErrResourceNotFound):
	case res.Name == "":
		// A minted resource is only known through the store; minting now could duplicate it.
		log.Error("config store unavailable", slog.String("error", err.Error()))
		return "", fmt.Errorf("%s: read %s: %w", op, res.Param, err)
	default:
		log.Warn("config store unavailable", slog.String("error", err.Error()))
	}

	addr, _, err := r.Ensure(ctx, res)
	if err != nil {
		return "", err
	}

	if err = r.params.Put(ctx, res.Param, addr); err != nil {
		log.Warn("failed to persist address", slog.String("addr", addr), slog.String("error", err.Error()))
	}

	return addr, nil
}

// Persist stores addr under res.Param.
func (r *Resolver) Persist(ctx context.Context, res Resource, addr string) error {
	return r.params.Put(ctx, res.Param, addr)
}
