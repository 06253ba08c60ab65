package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"commonfields/internal/dsl"
	"commonfields/internal/omit"
)

// selectAgreesWithHidden — всё скрытое исключено выборкой, всё исключённое скрыто.
func selectAgreesWithHidden(t *testing.T, v Visibility) {
	t.Helper()
	terms := v.Select.Terms()
	for name, hide := range v.Hidden {
		if hide {
			assert.True(t, terms.Exclude[name], "hidden %q must be excluded", name)
			assert.False(t, terms.Force[name], "hidden %q must not be forced", name)
		} else {
			assert.False(t, terms.Exclude[name] && !terms.Force[name], "visible %q must not be excluded", name)
		}
	}
	for name := range terms.Exclude {
		if !terms.Force[name] {
			assert.True(t, v.Hidden[name], "excluded %q must be hidden", name)
		}
	}
}

func TestComputeVisibility_ListWithCommon(t *testing.T) {
	v := ComputeVisibility(true, ExcludeList("test", "-hide"), false)

	assert.False(t, v.Select.IsMap())
	assert.True(t, strings.HasPrefix(v.Select.Expr, omit.Underscored().Expr))
	assert.True(t, strings.HasSuffix(v.Select.Expr, "-test +hide"))
	assert.True(t, v.Hidden["test"])
	assert.True(t, v.Hidden["password"])
	assert.False(t, v.Hidden["hide"])
	assert.Contains(t, v.Hidden, "hide")
	selectAgreesWithHidden(t, v)
}

func TestComputeVisibility_ListWithoutCommon(t *testing.T) {
	v := ComputeVisibility(false, ExcludeList(" test ", "-test2", ""), false)

	assert.Equal(t, "-test +test2", v.Select.Expr)
	assert.Equal(t, map[string]bool{"test": true, "test2": false}, v.Hidden)
	selectAgreesWithHidden(t, v)
}

func TestComputeVisibility_ForceIncludeBeatsCommonTable(t *testing.T) {
	v := ComputeVisibility(true, ExcludeList("-password"), false)

	assert.False(t, v.Hidden["password"])
	assert.Contains(t, strings.Fields(v.Select.Expr), "+password")
	assert.NotContains(t, strings.Fields(v.Select.Expr), "-password")
	selectAgreesWithHidden(t, v)

	// порядок не важен
	v = ComputeVisibility(false, ExcludeList("-x", "x"), false)
	assert.Equal(t, "+x", v.Select.Expr)
	assert.False(t, v.Hidden["x"])
}

func TestComputeVisibility_ListDeduplicates(t *testing.T) {
	v := ComputeVisibility(true, ExcludeList("password", "test", "test"), false)
	fields := strings.Fields(v.Select.Expr)
	assert.Len(t, fields, len(omit.Underscored().Keys)+1)
}

func TestComputeVisibility_ListEntryWithSpaces(t *testing.T) {
	v := ComputeVisibility(false, ExcludeList("draft notes", " -shown  extra"), false)

	assert.Equal(t, "-draft -notes +shown -extra", v.Select.Expr)
	assert.Equal(t, map[string]bool{"draft": true, "notes": true, "shown": false, "extra": true}, v.Hidden)
	assert.Empty(t, v.Select.Terms().Include, "list entries must never switch the selector to inclusion mode")
	selectAgreesWithHidden(t, v)
}

func TestComputeVisibility_Map(t *testing.T) {
	v := ComputeVisibility(true, VisibilityMap(map[string]bool{"title": true, "test": false}), false)

	assert.True(t, v.Select.IsMap())
	assert.True(t, v.Select.Fields["title"])
	assert.False(t, v.Select.Fields["test"])
	assert.False(t, v.Select.Fields["password"])
	assert.False(t, v.Hidden["title"])
	assert.True(t, v.Hidden["test"])
	assert.True(t, v.Hidden["password"])
	selectAgreesWithHidden(t, v)
}

func TestComputeVisibility_MapCallerWins(t *testing.T) {
	v := ComputeVisibility(true, VisibilityMap(map[string]bool{"password": true}), false)

	assert.True(t, v.Select.Fields["password"])
	assert.False(t, v.Hidden["password"])
	assert.True(t, v.Hidden["reset_token"])
	selectAgreesWithHidden(t, v)
}

func TestComputeVisibility_MapWithoutCommon(t *testing.T) {
	v := ComputeVisibility(false, VisibilityMap(map[string]bool{"title": false}), false)

	assert.Equal(t, map[string]bool{"title": false}, v.Select.Fields)
	assert.Equal(t, map[string]bool{"title": true}, v.Hidden)
}

func TestComputeVisibility_NoExtra(t *testing.T) {
	v := ComputeVisibility(true, NoExtraFields(), true)
	camel := omit.CamelCased()

	assert.Equal(t, camel.Expr, v.Select.Expr)
	assert.True(t, v.Hidden["resetToken"])
	assert.NotContains(t, v.Hidden, "reset_token")
	assert.Len(t, v.Hidden, len(camel.Keys))
	selectAgreesWithHidden(t, v)

	v = ComputeVisibility(false, NoExtraFields(), false)
	assert.Equal(t, dsl.SelectExpr(""), v.Select)
	assert.Empty(t, v.Hidden)

	v = ComputeVisibility(false, ExcludeList(), false)
	assert.True(t, v.Select.IsEmpty())
	assert.Empty(t, v.Hidden)
}
