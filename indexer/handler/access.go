package handler

import (
	"context"

	"github.com/assetkit/assetindexer/indexer/repository"
	"github.com/assetkit/assetindexer/types"
)

// RoleGranted records role membership; the member row exists while the role is held.
func RoleGranted(ctx context.Context, hc *Context, p RoleParams) error {
	id := types.AccessRoleMemberID(hc.Emitter(), p.Role, p.Account)
	_, _, err := repository.FetchOrCreate(ctx, hc.Store, id, func(m *types.AccessRoleMember) {
		m.ID = id
		m.Contract = hc.EmitterID()
		m.Role = p.Role.Hex()
		m.Account = types.AddressID(p.Account)
		m.GrantedAt = hc.Time()
	})
	if err != nil {
		return err
	}
	return touchAccount(ctx, hc, p)
}

func RoleRevoked(ctx context.Context, hc *Context, p RoleParams) error {
	id := types.AccessRoleMemberID(hc.Emitter(), p.Role, p.Account)
	if err := hc.Store.Delete(ctx, &types.AccessRoleMember{ID: id}); err != nil {
		return err
	}
	return touchAccount(ctx, hc, p)
}

func touchAccount(ctx context.Context, hc *Context, p RoleParams) error {
	acc, err := repository.FetchAccount(ctx, hc.Store, p.Account)
	if err != nil {
		return err
	}
	acc.LastActivity = hc.Time()
	return hc.Store.Put(ctx, acc)
}
