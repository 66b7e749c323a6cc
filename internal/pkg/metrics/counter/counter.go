package counter

import (
	"context"
	"strconv"

	"github.com/wishclip/wishclip/internal/pkg/cache"
)

const (
	checkoutsCreatedKey = "checkout:counters:created"
	ordersFulfilledKey  = "checkout:counters:fulfilled"
)

// AddCheckoutCreated increments the per-product checkout-created counter in Redis
func AddCheckoutCreated(productID uint) error {
	ctx := context.Background()
	field := strconv.FormatUint(uint64(productID), 10)
	return cache.GetClient().HIncrBy(ctx, checkoutsCreatedKey, field, 1).Err()
}

// AddOrderFulfilled increments the per-product fulfilled-order counter in Redis
func AddOrderFulfilled(productID uint) error {
	ctx := context.Background()
	field := strconv.FormatUint(uint64(productID), 10)
	return cache.GetClient().HIncrBy(ctx, ordersFulfilledKey, field, 1).Err()
}

// Totals returns the per-product counts for one of the counter hashes
func Totals(key string) (map[uint]int64, error) {
	ctx := context.Background()
	raw, err := cache.GetClient().HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	result := make(map[uint]int64, len(raw))
	for field, count := range raw {
		id, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			continue
		}
		n, err := strconv.ParseInt(count, 10, 64)
		if err != nil {
			continue
		}
		result[uint(id)] = n
	}
	return result, nil
}

// CheckoutTotals returns per-product checkout-created counts
func CheckoutTotals() (map[uint]int64, error) {
	return Totals(checkoutsCreatedKey)
}

// OrderTotals returns per-product fulfilled-order counts
func OrderTotals() (map[uint]int64, error) {
	return Totals(ordersFulfilledKey)
}
