package offers

import (
	"testing"
	"time"
)

func offerAt(side Side, price float64, user string, at int64) Offer {
	return Offer{
		Side:       side,
		Price:      &price,
		User:       user,
		ReceivedAt: time.Unix(at, 0),
		RawText:    "raw",
	}
}

func noPriceOffer(user string, at int64) Offer {
	return Offer{User: user, ReceivedAt: time.Unix(at, 0), RawText: "непонятное сообщение"}
}

func TestRankDirectionalBuySortsAscending(t *testing.T) {
	all := []Offer{
		offerAt(SideSell, 91.0, "a", 1),
		offerAt(SideSell, 89.5, "b", 2),
		offerAt(SideSell, 90.2, "c", 3),
	}

	result := RankDirectional(all, RankParams{Direction: SideBuy})

	got := result.Ranked.Offers
	if len(got) != 3 {
		t.Fatalf("expected 3 ranked offers, got %d", len(got))
	}
	if got[0].User != "b" || got[1].User != "c" || got[2].User != "a" {
		t.Fatalf("unexpected order: %s %s %s", got[0].User, got[1].User, got[2].User)
	}
}

func TestRankDirectionalSellSortsDescending(t *testing.T) {
	all := []Offer{
		offerAt(SideBuy, 88.0, "low", 1),
		offerAt(SideBuy, 92.0, "high", 2),
	}

	result := RankDirectional(all, RankParams{Direction: SideSell})

	got := result.Ranked.Offers
	if len(got) != 2 {
		t.Fatalf("expected 2 ranked offers, got %d", len(got))
	}
	if got[0].User != "high" || got[1].User != "low" {
		t.Fatalf("unexpected order: %s %s", got[0].User, got[1].User)
	}
}

func TestRankDirectionalTargetRateBuy(t *testing.T) {
	all := []Offer{
		offerAt(SideSell, 89.5, "a", 1),
		offerAt(SideSell, 91.0, "b", 2), // выше целевого курса покупателя
		offerAt(SideSell, 89.0, "c", 3),
	}

	result := RankDirectional(all, RankParams{Direction: SideBuy, TargetRate: 90})

	got := result.Ranked.Offers
	if len(got) != 2 {
		t.Fatalf("expected 2 ranked offers, got %d", len(got))
	}
	if got[0].PriceValue() != 89.0 || got[1].PriceValue() != 89.5 {
		t.Fatalf("unexpected prices: %v %v", got[0].PriceValue(), got[1].PriceValue())
	}
	if result.Ranked.Average != 89.25 {
		t.Fatalf("expected average 89.25, got %v", result.Ranked.Average)
	}
	if len(result.Other) != 1 || result.Other[0].User != "b" {
		t.Fatalf("offer above target rate must fall into Other: %+v", result.Other)
	}
}

func TestRankDirectionalTargetRateSell(t *testing.T) {
	all := []Offer{
		offerAt(SideBuy, 95.0, "good", 1),
		offerAt(SideBuy, 89.0, "bad", 2), // ниже целевого курса продавца
	}

	result := RankDirectional(all, RankParams{Direction: SideSell, TargetRate: 90})

	if len(result.Ranked.Offers) != 1 || result.Ranked.Offers[0].User != "good" {
		t.Fatalf("expected only the offer above target, got %+v", result.Ranked.Offers)
	}
}

func TestRankDirectionalOwnSideGoesToOther(t *testing.T) {
	all := []Offer{
		offerAt(SideBuy, 90.0, "same-side", 1),
		offerAt(SideSell, 91.0, "counter", 2),
	}

	result := RankDirectional(all, RankParams{Direction: SideBuy})

	if len(result.Ranked.Offers) != 1 || result.Ranked.Offers[0].User != "counter" {
		t.Fatalf("expected only the counter-side offer ranked, got %+v", result.Ranked.Offers)
	}
	if len(result.Other) != 1 || result.Other[0].User != "same-side" {
		t.Fatalf("same-side offer must fall into Other, got %+v", result.Other)
	}
}

func TestRankDirectionalUnknownSidePolicy(t *testing.T) {
	all := []Offer{
		offerAt(SideUnknown, 90.0, "mystery", 1),
	}

	withUnknown := RankDirectional(all, RankParams{Direction: SideBuy, IncludeUnknownSide: true})
	if len(withUnknown.Ranked.Offers) != 1 {
		t.Fatalf("unknown side with price must rank when policy allows, got %+v", withUnknown.Ranked.Offers)
	}

	withoutUnknown := RankDirectional(all, RankParams{Direction: SideBuy})
	if len(withoutUnknown.Ranked.Offers) != 0 {
		t.Fatalf("unknown side must not rank when policy forbids, got %+v", withoutUnknown.Ranked.Offers)
	}
	if len(withoutUnknown.Other) != 1 {
		t.Fatalf("unknown side must fall into Other, got %+v", withoutUnknown.Other)
	}
}

func TestRankDirectionalOtherTailMostRecentFirst(t *testing.T) {
	var all []Offer
	for i := int64(1); i <= 7; i++ {
		all = append(all, noPriceOffer("u", i))
	}

	result := RankDirectional(all, RankParams{Direction: SideBuy})

	if len(result.Other) != DefaultOtherLimit {
		t.Fatalf("expected %d other offers, got %d", DefaultOtherLimit, len(result.Other))
	}
	if !result.Other[0].ReceivedAt.Equal(time.Unix(7, 0)) {
		t.Fatalf("Other must start with the most recent offer, got %v", result.Other[0].ReceivedAt)
	}
	if !result.Other[4].ReceivedAt.Equal(time.Unix(3, 0)) {
		t.Fatalf("Other must end with the oldest surviving offer, got %v", result.Other[4].ReceivedAt)
	}
}

func TestRankBroadcastSplitsSides(t *testing.T) {
	all := []Offer{
		offerAt(SideBuy, 10.0, "b1", 1),
		offerAt(SideSell, 12.0, "s1", 2),
		offerAt(SideBuy, 11.0, "b2", 3),
		noPriceOffer("noise", 4),
	}

	result := RankBroadcast(all, RankParams{})

	if len(result.Buy.Offers) != 2 || result.Buy.Offers[0].PriceValue() != 11.0 {
		t.Fatalf("buys must sort descending, got %+v", result.Buy.Offers)
	}
	if len(result.Sell.Offers) != 1 || result.Sell.Offers[0].PriceValue() != 12.0 {
		t.Fatalf("unexpected sells: %+v", result.Sell.Offers)
	}
	if !result.HasSpread {
		t.Fatal("spread must be present when both sides are non-empty")
	}
	if result.Spread != 12.0-10.5 {
		t.Fatalf("expected spread 1.5, got %v", result.Spread)
	}
	if len(result.Other) != 1 || result.Other[0].User != "noise" {
		t.Fatalf("priceless offer must fall into Other, got %+v", result.Other)
	}
}

func TestRankBroadcastNoSpreadForOneSide(t *testing.T) {
	all := []Offer{offerAt(SideSell, 12.0, "s1", 1)}

	result := RankBroadcast(all, RankParams{})

	if result.HasSpread {
		t.Fatal("spread must be absent when only one side has offers")
	}
}

func TestRankBroadcastCapsBeforeAveraging(t *testing.T) {
	var all []Offer
	for i := 0; i < 15; i++ {
		all = append(all, offerAt(SideSell, float64(100+i), "s", int64(i)))
	}

	result := RankBroadcast(all, RankParams{})

	if len(result.Sell.Offers) != DefaultTopLimit {
		t.Fatalf("expected cap of %d, got %d", DefaultTopLimit, len(result.Sell.Offers))
	}
	// Среднее считается по урезанному списку: цены 100..109
	if result.Sell.Average != 104.5 {
		t.Fatalf("expected average 104.5 over capped list, got %v", result.Sell.Average)
	}
}

func TestWeightedAverage(t *testing.T) {
	avg := WeightedAverage([]Weighted{
		{Price: 100, Weight: 1},
		{Price: 200, Weight: 3},
	})
	if avg != 175 {
		t.Fatalf("expected 175, got %v", avg)
	}

	if WeightedAverage(nil) != 0 {
		t.Fatal("empty input must give 0")
	}
	if WeightedAverage([]Weighted{{Price: 10, Weight: 0}}) != 0 {
		t.Fatal("zero total weight must give 0")
	}
}

func TestWithinTarget(t *testing.T) {
	if !WithinTarget(SideBuy, 89, 90) {
		t.Fatal("buyer accepts prices at or below target")
	}
	if WithinTarget(SideBuy, 91, 90) {
		t.Fatal("buyer rejects prices above target")
	}
	if !WithinTarget(SideSell, 91, 90) {
		t.Fatal("seller accepts prices at or above target")
	}
	if WithinTarget(SideSell, 89, 90) {
		t.Fatal("seller rejects prices below target")
	}
	if !WithinTarget(SideBuy, 1000, 0) {
		t.Fatal("zero target disables the filter")
	}
}

func TestSortByFavorabilityStable(t *testing.T) {
	type quote struct {
		id    string
		price float64
	}
	quotes := []quote{{"a", 5}, {"b", 3}, {"c", 5}, {"d", 1}}

	SortByFavorability(quotes, SideBuy, func(q quote) float64 { return q.price })

	want := []string{"d", "b", "a", "c"}
	for i, q := range quotes {
		if q.id != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], q.id)
		}
	}
}
