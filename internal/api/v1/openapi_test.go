package apiv1

import (
	"context"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAPISpecIsValid(t *testing.T) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile("../../../public/docs/v1/openapi.yml")
	require.NoError(t, err)

	require.NoError(t, doc.Validate(context.Background()))
}

func TestOpenAPISpecCoversServedRoutes(t *testing.T) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile("../../../public/docs/v1/openapi.yml")
	require.NoError(t, err)

	for _, path := range []string{
		"/ping",
		"/user/profile",
		"/alerts",
		"/alerts/{uuid}",
		"/quotes/{symbol}",
	} {
		item := doc.Paths.Find(path)
		require.NotNil(t, item, "missing path %s", path)
		assert.NotNil(t, item.Get, "missing GET for %s", path)
	}
}
