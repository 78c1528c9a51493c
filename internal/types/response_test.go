package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceResponse_Decode(t *testing.T) {
	var resp ResourceResponse
	require.NoError(t, json.Unmarshal([]byte(`{"metas":[{"id":"tt1","type":"movie","name":"One"}]}`), &resp))
	require.Len(t, resp.Metas, 1)
	assert.Equal(t, "One", resp.Metas[0].Name)
	assert.Nil(t, resp.Streams)

	require.NoError(t, json.Unmarshal([]byte(`{"streams":[{"infoHash":"abc","fileIdx":0}]}`), &resp))
	require.Len(t, resp.Streams, 1)
	require.NotNil(t, resp.Streams[0].FileIdx)
	assert.Equal(t, 0, *resp.Streams[0].FileIdx)
	assert.Nil(t, resp.Metas, "decode replaces the previous payload")

	require.NoError(t, json.Unmarshal([]byte(`{"meta":{"id":"tt1","type":"series","name":"S","videos":[{"id":"tt1:1:1","title":"Pilot","season":1,"episode":1}]}}`), &resp))
	require.NotNil(t, resp.Meta)
	assert.Len(t, resp.Meta.Videos, 1)
}

func TestResourceResponse_EmptyListIsValid(t *testing.T) {
	var resp ResourceResponse
	require.NoError(t, json.Unmarshal([]byte(`{"metas":[]}`), &resp))
	assert.NotNil(t, resp.Metas)
	assert.Empty(t, resp.Metas)
}

func TestResourceResponse_Unrecognized(t *testing.T) {
	var resp ResourceResponse
	err := json.Unmarshal([]byte(`{"unexpected":true}`), &resp)
	assert.ErrorIs(t, err, ErrUnrecognizedResponse)

	err = json.Unmarshal([]byte(`[1,2]`), &resp)
	assert.Error(t, err)
}
