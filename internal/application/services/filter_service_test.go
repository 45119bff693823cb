package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tododash/core/internal/application/services"
	"github.com/tododash/core/internal/domain/entities"
	"github.com/tododash/core/internal/infrastructure/logger"
)

var (
	testProjects = []entities.Project{
		{ID: 1, Name: "Work", Color: "red"},
		{ID: 2, Name: "Home", Color: "blue"},
		{ID: 3, Name: "Work", Color: "green"}, // duplicate name
		{ID: 4, Name: "Archive", Color: "grey"},
	}
	testLabels = []entities.Label{
		{ID: 10, Name: "urgent", Color: "red"},
		{ID: 11, Name: "waiting", Color: "yellow"},
		{ID: 12, Name: "errand", Color: "green"},
	}
)

func ids(m map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	return out
}

func TestResolveIncludeProjects(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	rc := services.Resolve(entities.Criterion{Projects: []string{"Work", "Home"}}, testProjects, testLabels)
	// One id per listed name; the first reference-table match wins for
	// duplicate names.
	assert.ElementsMatch([]int64{1, 2}, ids(rc.Projects))
	assert.Nil(rc.Labels)
	assert.Nil(rc.Priority)
}

func TestResolveExcludeProjects(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	rc := services.Resolve(entities.Criterion{Projects: []string{"Work"}, ExcludeProjects: true}, testProjects, testLabels)
	assert.ElementsMatch([]int64{2, 4}, ids(rc.Projects))
}

func TestResolveUnknownNamesNarrowSilently(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	rc := services.Resolve(entities.Criterion{Projects: []string{"Nope"}}, testProjects, testLabels)
	// "constraint matching nothing" stays distinct from "no constraint"
	assert.NotNil(rc.Projects)
	assert.Empty(rc.Projects)
}

func TestResolveLabelsAndPriority(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	rc := services.Resolve(entities.Criterion{
		Labels:   []string{"urgent", "errand"},
		Priority: []int{1, 2},
	}, testProjects, testLabels)

	assert.ElementsMatch([]int64{10, 12}, ids(rc.Labels))
	assert.Contains(rc.Priority, 4)
	assert.Contains(rc.Priority, 3)
	assert.Len(rc.Priority, 2)

	rc = services.Resolve(entities.Criterion{Labels: []string{"waiting"}, ExcludeLabels: true}, testProjects, testLabels)
	assert.ElementsMatch([]int64{10, 12}, ids(rc.Labels))
	assert.True(rc.ExcludeLabels)
}

func resolveGroups(groups []entities.FilterGroup) [][]services.ResolvedCriterion {
	resolved := make([][]services.ResolvedCriterion, len(groups))
	for i, g := range groups {
		resolved[i] = make([]services.ResolvedCriterion, len(g.Criteria))
		for j, c := range g.Criteria {
			resolved[i][j] = services.Resolve(c, testProjects, testLabels)
		}
	}
	return resolved
}

func TestClassifyFirstMatchWinsAcrossGroups(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	groups := []entities.FilterGroup{
		{Name: "Work", Criteria: []entities.Criterion{{Projects: []string{"Work"}}}},
		{Name: "Everything", Criteria: []entities.Criterion{{}}},
	}

	items := []entities.Task{
		{ID: 100, ProjectID: 1},
		{ID: 101, ProjectID: 2},
		{ID: 102, ProjectID: 1},
	}

	matched := services.Classify(items, resolveGroups(groups), time.Now())

	// The Work task matches both groups but lands only in the first;
	// insertion order is preserved.
	assert.Len(matched[0], 2)
	assert.Equal(int64(100), matched[0][0].ID)
	assert.Equal(int64(102), matched[0][1].ID)
	assert.Len(matched[1], 1)
	assert.Equal(int64(101), matched[1][0].ID)

	// Classification is a partition: no item appears twice.
	seen := make(map[int64]int)
	for _, group := range matched {
		for _, item := range group {
			seen[item.ID]++
		}
	}
	for id, count := range seen {
		assert.Equal(1, count, "item %d assigned to more than one group", id)
	}
}

func TestClassifyLabelRules(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	include := []entities.FilterGroup{
		{Name: "Urgent", Criteria: []entities.Criterion{{Labels: []string{"urgent"}}}},
	}
	exclude := []entities.FilterGroup{
		{Name: "NotWaiting", Criteria: []entities.Criterion{{Labels: []string{"waiting"}, ExcludeLabels: true}}},
	}

	labelled := entities.Task{ID: 1, Labels: []int64{10}}
	otherLabel := entities.Task{ID: 2, Labels: []int64{11}}
	unlabelled := entities.Task{ID: 3}

	matched := services.Classify([]entities.Task{labelled, otherLabel, unlabelled}, resolveGroups(include), time.Now())
	// An inclusion list requires at least one matching label.
	assert.Len(matched[0], 1)
	assert.Equal(int64(1), matched[0][0].ID)

	matched = services.Classify([]entities.Task{labelled, otherLabel, unlabelled}, resolveGroups(exclude), time.Now())
	// An exclusion list tolerates unlabelled items.
	assert.Len(matched[0], 2)
	assert.Equal(int64(1), matched[0][0].ID)
	assert.Equal(int64(3), matched[0][1].ID)
}

func TestClassifyPriority(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	groups := []entities.FilterGroup{
		{Name: "P1", Criteria: []entities.Criterion{{Priority: []int{1}}}},
	}

	p1 := entities.Task{ID: 1, Priority: 4} // raw 4 = user p1
	p4 := entities.Task{ID: 2, Priority: 1}

	matched := services.Classify([]entities.Task{p1, p4}, resolveGroups(groups), time.Now())
	assert.Len(matched[0], 1)
	assert.Equal(int64(1), matched[0][0].ID)
}

func TestClassifyNoDate(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	groups := []entities.FilterGroup{
		{Name: "Dated", Criteria: []entities.Criterion{{NoDate: entities.NoDateExclude}}},
		{Name: "Undated", Criteria: []entities.Criterion{{NoDate: entities.NoDateOnly}}},
	}

	dated := entities.Task{ID: 1, Due: &entities.Due{Date: "2024-03-05"}}
	undated := entities.Task{ID: 2}

	matched := services.Classify([]entities.Task{dated, undated}, resolveGroups(groups), time.Now())
	assert.Len(matched[0], 1)
	assert.Equal(int64(1), matched[0][0].ID)
	assert.Len(matched[1], 1)
	assert.Equal(int64(2), matched[1][0].ID)
}

func TestClassifyWithinDays(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	now := time.Date(2024, time.March, 5, 12, 0, 0, 0, time.Local)
	groups := []entities.FilterGroup{
		{Name: "Soon", Criteria: []entities.Criterion{{WithinDays: 7}}},
	}

	inWindow := entities.Task{ID: 1, Due: &entities.Due{Date: "2024-03-06"}}
	beyond := entities.Task{ID: 2, Due: &entities.Due{Date: "2024-03-20"}}
	overdue := entities.Task{ID: 3, Due: &entities.Due{Date: "2023-11-01"}}
	noDue := entities.Task{ID: 4}
	malformed := entities.Task{ID: 5, Due: &entities.Due{Date: "someday"}}

	matched := services.Classify([]entities.Task{inWindow, beyond, overdue, noDue, malformed}, resolveGroups(groups), now)

	var got []int64
	for _, item := range matched[0] {
		got = append(got, item.ID)
	}
	// No lower bound: overdue passes. No due date: the window does not
	// apply. Malformed date: item-scoped fallback, passes.
	assert.Equal([]int64{1, 3, 4, 5}, got)
}

func TestClassifyWithinDaysZeroImposesNoConstraint(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	groups := []entities.FilterGroup{
		{Name: "All", Criteria: []entities.Criterion{{WithinDays: 0}}},
	}

	farOut := entities.Task{ID: 1, Due: &entities.Due{Date: time.Now().AddDate(0, 0, 400).Format("2006-01-02")}}

	matched := services.Classify([]entities.Task{farOut}, resolveGroups(groups), time.Now())
	assert.Len(matched[0], 1)
}

func TestFinalizeEnrichment(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	items := []entities.Task{
		{ID: 1, Due: &entities.Due{Date: "2024-03-05"}},
		{ID: 2, Due: &entities.Due{Date: "2024-03-05T14:30:00Z"}},
		{ID: 3},
		{ID: 4, Due: &entities.Due{Date: "whenever"}},
	}

	out := services.Finalize(items, entities.DisplayConfig{SortType: entities.SortTodoist})

	byID := make(map[int64]entities.Task)
	for _, item := range out {
		byID[item.ID] = item
	}

	assert.True(byID[1].AllDay)
	assert.Equal(time.Date(2024, time.March, 5, 0, 0, 0, 0, time.Local), byID[1].SortDate)

	assert.False(byID[2].AllDay)
	assert.Equal(time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC), byID[2].SortDate)

	// Missing due date gets the sentinel.
	assert.True(byID[3].AllDay)
	assert.Equal(entities.SentinelDueDate, byID[3].Due.Date)
	assert.Equal(entities.SentinelInstant(), byID[3].SortDate)

	// Malformed due date sorts like a missing one but keeps its string.
	assert.True(byID[4].AllDay)
	assert.Equal("whenever", byID[4].Due.Date)
	assert.Equal(entities.SentinelInstant(), byID[4].SortDate)

	// The input slice is not enriched in place.
	assert.True(items[0].SortDate.IsZero())
}

func TestFinalizeSortStability(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	items := []entities.Task{
		{ID: 1, ChildOrder: 2, Due: &entities.Due{Date: "2024-03-06"}},
		{ID: 2, ChildOrder: 1, Due: &entities.Due{Date: "2024-03-05"}},
		{ID: 3, ChildOrder: 3, Due: &entities.Due{Date: "2024-03-05"}}, // ties with ID 2
	}

	asc := services.Finalize(items, entities.DisplayConfig{SortType: entities.SortDueDateAsc})
	assert.Equal([]int64{2, 3, 1}, idsOf(asc))

	desc := services.Finalize(items, entities.DisplayConfig{SortType: entities.SortDueDateDesc})
	assert.Equal([]int64{1, 2, 3}, idsOf(desc))

	todoist := services.Finalize(items, entities.DisplayConfig{SortType: entities.SortTodoist})
	assert.Equal([]int64{2, 1, 3}, idsOf(todoist))

	// Unrecognized sort types fall back to todoist order.
	unknown := services.Finalize(items, entities.DisplayConfig{SortType: "alphabetical"})
	assert.Equal([]int64{2, 1, 3}, idsOf(unknown))
}

func TestFinalizeSentinelOrdering(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	items := []entities.Task{
		{ID: 1},
		{ID: 2, Due: &entities.Due{Date: "2024-03-05"}},
	}

	asc := services.Finalize(items, entities.DisplayConfig{SortType: entities.SortDueDateAsc})
	assert.Equal([]int64{2, 1}, idsOf(asc))

	desc := services.Finalize(items, entities.DisplayConfig{SortType: entities.SortDueDateDesc})
	assert.Equal([]int64{1, 2}, idsOf(desc))
}

func TestFinalizeTruncation(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	items := []entities.Task{{ID: 1}, {ID: 2}, {ID: 3}}

	out := services.Finalize(items, entities.DisplayConfig{MaximumEntries: 2})
	assert.Len(out, 2)

	out = services.Finalize(items, entities.DisplayConfig{MaximumEntries: 5})
	assert.Len(out, 3)

	out = services.Finalize(items, entities.DisplayConfig{MaximumEntries: 0})
	assert.Len(out, 3)

	out = services.Finalize(items, entities.DisplayConfig{MaximumEntries: -1})
	assert.Len(out, 3)
}

func TestBuildViewsEndToEnd(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	payload := &entities.SyncPayload{
		Items: []entities.Task{
			{ID: 1, Content: "task A", ProjectID: 1, Due: &entities.Due{Date: tomorrow}},
			{ID: 2, Content: "task B", ProjectID: 2},
		},
		Projects: []entities.Project{{ID: 1, Name: "Work"}},
	}
	groups := []entities.FilterGroup{
		{
			Name:     "This week",
			Config:   entities.DisplayConfig{SortType: entities.SortDueDateAsc, MaximumEntries: 10},
			Criteria: []entities.Criterion{{Projects: []string{"Work"}, WithinDays: 7}},
		},
	}

	svc := services.NewFilterService(logger.NewNop())

	views := svc.BuildViews(payload, groups)
	assert.Len(views, 1)
	assert.Equal("This week", views[0].Name)
	assert.Len(views[0].Items, 1)
	assert.Equal(int64(1), views[0].Items[0].ID)

	// Byte-identical input yields byte-identical output.
	again := svc.BuildViews(payload, groups)
	assert.Equal(views, again)
}

func idsOf(items []entities.Task) []int64 {
	out := make([]int64, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}
