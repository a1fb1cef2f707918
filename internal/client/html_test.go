package client

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/matcher/internal/domain"
)

const categoryTreeHTML = `
<html><body>
<ul class="category-tree">
  <li>
    <a href="/list?catId=100">Giyim</a>
    <ul>
      <li>
        <a href="/list?catId=110">Kadın Giyim</a>
        <ul>
          <li><a href="/list?catId=111">Elbise</a></li>
          <li><a class="disabled" href="/list?catId=112">Abiye</a></li>
        </ul>
      </li>
    </ul>
  </li>
  <li>
    <a href="/list?gender=all&categoryId=200">Elektronik</a>
    <ul>
      <li><a href="/list?categoryId=210">Cep Telefonu</a></li>
    </ul>
  </li>
  <li><a href="/campaign">Kampanyalar</a></li>
</ul>
</body></html>`

func parseTreeFixture(t *testing.T) []domain.Category {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(categoryTreeHTML))
	require.NoError(t, err)

	var categories []domain.Category
	doc.Find("ul.category-tree").First().ChildrenFiltered("li").Each(func(i int, li *goquery.Selection) {
		categories = append(categories, walkCategoryList(li, nil)...)
	})
	return categories
}

func TestWalkCategoryList_BuildsBreadcrumbPaths(t *testing.T) {
	categories := parseTreeFixture(t)
	require.Len(t, categories, 7)

	byID := make(map[int]domain.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	elbise := byID[111]
	assert.Equal(t, "Elbise", elbise.Name)
	assert.Equal(t, []string{"Giyim", "Kadın Giyim", "Elbise"}, elbise.Path)
	assert.True(t, elbise.IsLeaf)
	assert.True(t, elbise.IsAvailable)

	giyim := byID[100]
	assert.Equal(t, []string{"Giyim"}, giyim.Path)
	assert.False(t, giyim.IsLeaf)
}

func TestWalkCategoryList_DisabledLinkIsUnavailable(t *testing.T) {
	categories := parseTreeFixture(t)

	for _, c := range categories {
		if c.ID == 112 {
			assert.False(t, c.IsAvailable)
			assert.True(t, c.IsLeaf)
			return
		}
	}
	t.Fatal("category 112 not parsed")
}

func TestWalkCategoryList_BothIDParamNamesSupported(t *testing.T) {
	categories := parseTreeFixture(t)

	ids := make(map[int]bool)
	for _, c := range categories {
		ids[c.ID] = true
	}
	assert.True(t, ids[100], "catId param")
	assert.True(t, ids[200], "categoryId param with leading query params")
	assert.True(t, ids[210])
}

func TestWalkCategoryList_MissingIDDefaultsToZero(t *testing.T) {
	categories := parseTreeFixture(t)

	var kampanya domain.Category
	for _, c := range categories {
		if c.Name == "Kampanyalar" {
			kampanya = c
		}
	}
	require.NotEmpty(t, kampanya.Name)
	assert.Zero(t, kampanya.ID)
}

func TestWalkCategoryList_EmptyNameSkipped(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<ul class="category-tree"><li><a href="/x?catId=1"> </a></li></ul>`))
	require.NoError(t, err)

	var categories []domain.Category
	doc.Find("ul.category-tree").First().ChildrenFiltered("li").Each(func(i int, li *goquery.Selection) {
		categories = append(categories, walkCategoryList(li, nil)...)
	})
	assert.Empty(t, categories)
}
