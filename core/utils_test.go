package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControlSubject(t *testing.T) {
	tests := []struct {
		name            string
		verb            Verb
		srvName         string
		id              string
		expectedSubject string
		withError       error
	}{
		{name: "PING ALL", verb: PingVerb, expectedSubject: "$SRV.PING"},
		{name: "PING name", verb: PingVerb, srvName: "test", expectedSubject: "$SRV.PING.test"},
		{name: "INFO id", verb: InfoVerb, srvName: "test", id: "123", expectedSubject: "$SRV.INFO.test.123"},
		{name: "invalid verb", verb: Verb(100), withError: ErrVerbNotSupported},
		{name: "name not provided", verb: PingVerb, id: "123", withError: ErrServiceNameRequired},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			res, err := ControlSubject(test.verb, test.srvName, test.id)
			if test.withError != nil {
				assert.ErrorIs(t, err, test.withError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expectedSubject, res)
		})
	}
}

func TestResolveQueueGroup(t *testing.T) {
	qg, off := resolveQueueGroup("", "", false, false)
	assert.Equal(t, DefaultQueueGroup, qg)
	assert.False(t, off)

	qg, _ = resolveQueueGroup("own", "parent", false, false)
	assert.Equal(t, "own", qg)

	qg, _ = resolveQueueGroup("", "parent", false, false)
	assert.Equal(t, "parent", qg)

	_, off = resolveQueueGroup("", "parent", false, true)
	assert.True(t, off)

	_, off = resolveQueueGroup("own", "", true, false)
	assert.True(t, off)
}

func TestMatchEndpointSubject(t *testing.T) {
	assert.True(t, matchEndpointSubject("shop.update", "shop.update"))
	assert.True(t, matchEndpointSubject("shop.*", "shop.node"))
	assert.True(t, matchEndpointSubject("shop.>", "shop.a.b"))
	assert.False(t, matchEndpointSubject("shop", "shop.node"))
	assert.False(t, matchEndpointSubject("shop.update", "shop.node"))
}

func TestJoinParts(t *testing.T) {
	assert.Equal(t, "a.b", joinParts("a", "", "b"))
	assert.Equal(t, "b", joinParts("", "b"))
	assert.Equal(t, "", joinParts())
}
