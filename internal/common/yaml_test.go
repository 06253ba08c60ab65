package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestOptionsYAML_Full(t *testing.T) {
	src := `
object: blog_post
camelCase: "true"
locale: false
defaultLocale: ru
omitCommonFields: false
omitExtraFields: [test, -hide]
uniqueId: "false"
uniqueValidator:
  message: "{PATH} is taken"
errorTransform:
  capitalize: false
hidden:
  hideObject: false
  hidden:
    title: "true"
`
	var o Options
	require.NoError(t, yaml.Unmarshal([]byte(src), &o))

	assert.Equal(t, "blog_post", o.Object)
	assert.True(t, o.CamelCase.Or(false))
	assert.False(t, o.Locale.Or(true))
	require.NotNil(t, o.DefaultLocale)
	assert.Equal(t, "ru", *o.DefaultLocale)
	assert.False(t, o.OmitCommonFields.Or(true))
	list, ok := o.OmitExtraFields.List()
	require.True(t, ok)
	assert.Equal(t, []string{"test", "-hide"}, list)
	assert.False(t, o.UniqueID.Or(true))
	assert.Equal(t, "{PATH} is taken", o.UniqueValidator.Message)
	assert.False(t, o.UniqueValidator.Disabled)
	assert.False(t, o.ErrorTransform.Capitalize.Or(true))
	assert.False(t, o.ErrorTransform.Humanize.IsSet())
	assert.False(t, o.Hidden.HideObject.Or(true))
	assert.Equal(t, map[string]bool{"title": true}, o.Hidden.Hidden)
}

func TestOptionsYAML_ExtraFieldShapes(t *testing.T) {
	var o Options
	require.NoError(t, yaml.Unmarshal([]byte("object: x\nomitExtraFields:\n  title: false\n  body: \"true\"\n"), &o))
	m, ok := o.OmitExtraFields.Map()
	require.True(t, ok)
	assert.Equal(t, map[string]bool{"title": false, "body": true}, m)

	o = Options{}
	require.NoError(t, yaml.Unmarshal([]byte("object: x\nomitExtraFields: false\n"), &o))
	assert.True(t, o.OmitExtraFields.IsSet())
	_, isList := o.OmitExtraFields.List()
	_, isMap := o.OmitExtraFields.Map()
	assert.False(t, isList)
	assert.False(t, isMap)

	o = Options{}
	require.NoError(t, yaml.Unmarshal([]byte("object: x\n"), &o))
	assert.False(t, o.OmitExtraFields.IsSet())
}

func TestOptionsYAML_UniqueValidatorFalse(t *testing.T) {
	var o Options
	require.NoError(t, yaml.Unmarshal([]byte("object: x\nuniqueValidator: false\n"), &o))
	assert.True(t, o.UniqueValidator.Disabled)

	e, err := Decorate(blogPost(), o)
	require.NoError(t, err)
	for _, p := range e.Plugins {
		assert.NotEqual(t, "unique-validator", p.Name)
	}
}

func TestOptionsYAML_BadFlag(t *testing.T) {
	var o Options
	err := yaml.Unmarshal([]byte("object: x\nuniqueId: yes\n"), &o)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a boolean")
}

func TestOptionsYAML_ObjectNotString(t *testing.T) {
	for _, src := range []string{"object: 45\n", "object: [a]\n", "object: true\n"} {
		var o Options
		require.NoError(t, yaml.Unmarshal([]byte(src), &o), src)

		_, err := Decorate(blogPost(), o)
		require.Error(t, err, src)
		assert.True(t, errors.Is(err, ErrConfiguration))
	}

	var o Options
	require.NoError(t, yaml.Unmarshal([]byte("object: \"45\"\n"), &o))
	_, err := Decorate(blogPost(), o)
	assert.NoError(t, err)
}
