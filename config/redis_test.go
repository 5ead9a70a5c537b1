package config

import (
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestConnectRedis_TestEnvSkips(t *testing.T) {
	t.Setenv("APPENV", "test")
	ResetRedisClientForTest()
	defer ResetRedisClientForTest()

	rdb, err := ConnectRedis()
	assert.NoError(t, err)
	assert.Nil(t, rdb)
}

func TestGetRedisClient_NotInitialized(t *testing.T) {
	SetRedisClientForTest(nil)

	client := GetRedisClient()
	assert.Nil(t, client)
}

func TestRedisTestHelpers_SetAndReset(t *testing.T) {
	original := GetRedisClient()
	defer SetRedisClientForTest(original)

	rdb, _ := redismock.NewClientMock()
	SetRedisClientForTest(rdb)
	assert.Equal(t, rdb, GetRedisClient())

	ResetRedisClientForTest()
	assert.Nil(t, GetRedisClient())
}

func TestConnectRedis_ConcurrentCalls(t *testing.T) {
	t.Setenv("APPENV", "test")
	ResetRedisClientForTest()
	defer ResetRedisClientForTest()

	type callResult struct {
		rdb interface{}
		err error
	}
	done := make(chan callResult, 5)
	for i := 0; i < 5; i++ {
		go func() {
			rdb, err := ConnectRedis()
			done <- callResult{rdb: rdb, err: err}
		}()
	}

	for i := 0; i < 5; i++ {
		res := <-done
		assert.NoError(t, res.err)
		assert.Nil(t, res.rdb)
	}
}
