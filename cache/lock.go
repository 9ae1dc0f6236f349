package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	lockTime       = 180
	lockTicker     = 10
	lockMultisigTx = "lock:multisig_tx:"
)

var ErrDistributedLockPreemption = errors.New("distributed lock preemption")

// LockWithRedis takes the per-transaction lock guarding locally-initiated
// approvals, so two devices behind one backend cannot race the same call.
func (r *RedisCache) LockWithRedis(txKey string) error {
	ret := r.Red.SetNX(lockMultisigTx+txKey, txKey, time.Second*lockTime)
	if err := ret.Err(); err != nil {
		return fmt.Errorf("redis set tx nx-->%s", err.Error())
	}
	if !ret.Val() {
		log.Info("LockWithRedis lock:", txKey)
		return ErrDistributedLockPreemption
	}
	log.Info("LockWithRedis:", txKey)
	return nil
}

func (r *RedisCache) UnLockWithRedis(txKey string) error {
	ret := r.Red.Del(lockMultisigTx + txKey)
	if err := ret.Err(); err != nil {
		return fmt.Errorf("redis del tx nx-->%s", err.Error())
	}
	log.Info("UnLockWithRedis:", txKey)
	return nil
}

func (r *RedisCache) DoLockExpire(ctx context.Context, txKey string) {
	ticker := time.NewTicker(time.Second * lockTicker)
	go func() {
		for {
			select {
			case <-ticker.C:
				ok, err := r.Red.Expire(lockMultisigTx+txKey, time.Second*lockTime).Result()
				if err != nil {
					log.Error("DoLockExpire err: ", err.Error(), txKey)
				} else if !ok {
					log.Warn("DoLockExpire lock gone:", txKey)
				}
			case <-ctx.Done():
				ticker.Stop()
				log.Info("DoLockExpire done:", txKey)
				return
			}
		}
	}()
}
