package usecase

import (
	"sort"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/sleeper-trades/internal/domain/trades"
)

// tradeTypes are the transaction types that count as trades. Records without
// a type pass the filter; Sleeper omits it on some older payloads.
var tradeTypes = map[string]struct{}{
	"trade":             {},
	"trade_proposal":    {},
	"trade_transaction": {},
}

func isTradeType(tx trades.Transaction) bool {
	v, ok := tx["type"]
	if !ok || v == nil {
		return true
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, ok = tradeTypes[s]
	return ok
}

// involvesUser reports whether a transaction touches the user: either one of
// the user's roster ids appears in the record's roster list, or the user id
// shows up anywhere in the serialized record. The substring check is the
// safety net for payload shapes the roster list misses.
func involvesUser(tx trades.Transaction, userRosterIDs []string, userID string) bool {
	for _, rid := range stringSet(tx["roster_ids"]) {
		if containsString(userRosterIDs, rid) {
			return true
		}
	}

	raw, err := sonic.Marshal(map[string]any(tx))
	if err != nil {
		return false
	}
	return strings.Contains(string(raw), userID)
}

// resolveAssetFlow works out what the user gained and lost in one transaction
// by unioning three heuristics over the record:
//
//  1. embedded pick lists annotated with owner and previous owner,
//  2. adds/drops maps from player id to receiving or losing roster,
//  3. undifferentiated players plus roster_ids lists, where every listed
//     player is credited as gained to each involved roster.
//
// Rule 3 over-attributes multi-party trades on purpose: showing an asset the
// user did not receive beats silently dropping one they did.
func resolveAssetFlow(tx trades.Transaction, userRosterIDs []string, dir trades.Directory) trades.AssetFlow {
	var gained, lost []string

	for _, field := range []string{"traded_picks", "draft_picks", "picks", "traded_pick"} {
		tp, ok := tx[field]
		if !ok || !present(tp) {
			continue
		}
		for _, raw := range anySlice(tp) {
			pick, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			owner := firstString(pick, "owner_id", "owner")
			prev := firstString(pick, "previous_owner_id", "previous_owner")
			desc := pickDescription(asString(pick["season"]), asString(pick["round"]))
			if owner != "" && containsString(userRosterIDs, owner) {
				gained = append(gained, desc)
			}
			if prev != "" && containsString(userRosterIDs, prev) {
				lost = append(lost, desc)
			}
		}
	}

	if adds, ok := tx["adds"].(map[string]any); ok {
		for _, pid := range sortedKeys(adds) {
			rid := adds[pid]
			if rid == nil {
				continue
			}
			if containsString(userRosterIDs, asString(rid)) {
				gained = append(gained, PlayerName(dir, pid))
			}
		}
	}
	if drops, ok := tx["drops"].(map[string]any); ok {
		for _, pid := range sortedKeys(drops) {
			rid := drops[pid]
			if rid == nil {
				continue
			}
			if containsString(userRosterIDs, asString(rid)) {
				lost = append(lost, PlayerName(dir, pid))
			}
		}
	}

	if players, ok := tx["players"].([]any); ok {
		txRosterIDs := stringSet(tx["roster_ids"])
		for _, rid := range userRosterIDs {
			if !containsString(txRosterIDs, rid) {
				continue
			}
			for _, pv := range players {
				pid := asString(pv)
				name := pid
				if isAllDigits(pid) {
					name = PlayerName(dir, pid)
				}
				if !containsString(gained, name) {
					gained = append(gained, name)
				}
			}
		}
	}

	return trades.AssetFlow{
		Gained: dedupInOrder(gained),
		Lost:   dedupInOrder(lost),
	}
}

// pickDescription renders a draft pick as "<season> R<round> pick", with "?"
// standing in for an unknown round.
func pickDescription(season, round string) string {
	if round == "" {
		round = "?"
	}
	return strings.TrimSpace(season + " R" + round + " pick")
}

func sortedKeys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
