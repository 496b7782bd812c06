package contract

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/contract/fixtures"
)

const coursesPath = "/courses/"

func coursePath(id int64) string {
	return fmt.Sprintf("/courses/%d/", id)
}

// DoCourseTests verifies the course resource's HTTP contract
func DoCourseTests(t *T) {
	t.Run("retrieve", doRetrieveTests)
	t.Run("list", doListTests)
	t.Run("filter", doFilterTests)
	t.Run("create", doCreateTests)
	t.Run("update", doUpdateTests)
	t.Run("delete", doDeleteTests)
}

func (t *T) courses(n int) []*models.Course {
	courses, err := t.Fixtures().Courses.Create(t.Ctx(), fixtures.CourseOptions{Quantity: n})
	require.NoError(t, err)
	return courses
}

func (t *T) course() *models.Course {
	course, err := t.Fixtures().Courses.One(t.Ctx())
	require.NoError(t, err)
	return course
}

func (t *T) students(n int) []*models.Student {
	students, err := t.Fixtures().Students.Create(t.Ctx(), fixtures.StudentOptions{Quantity: n})
	require.NoError(t, err)
	return students
}

func studentIDs(students []*models.Student) []int64 {
	ids := make([]int64, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}
	return ids
}

func int64s(result gjson.Result) []int64 {
	ids := []int64{}
	for _, v := range result.Array() {
		ids = append(ids, v.Int())
	}
	return ids
}

func doRetrieveTests(t *T) {
	t.Run("existing course", func(t *T) {
		course := t.course()

		resp := t.get(coursePath(course.ID), nil)

		require.Equal(t, http.StatusOK, resp.Status)
		body := resp.JSON()
		assert.Equal(t, course.ID, body.Get("id").Int())
		assert.Equal(t, course.Name, body.Get("name").String())
		assert.True(t, body.Get("students").IsArray(), "students should be an array")
	})

	t.Run("unknown course is 404", func(t *T) {
		course := t.course()

		resp := t.get(coursePath(course.ID+1000), nil)

		assert.Equal(t, http.StatusNotFound, resp.Status)
	})
}

func doListTests(t *T) {
	for _, n := range []int{0, 1, 5} {
		t.Run(fmt.Sprintf("%d courses in creation order", n), func(t *T) {
			var created []*models.Course
			if n > 0 {
				created = t.courses(n)
			}

			resp := t.get(coursesPath, nil)

			require.Equal(t, http.StatusOK, resp.Status)
			items := resp.JSON().Array()
			require.Len(t, items, n)
			for k := range created {
				assert.Equal(t, created[k].Name, items[k].Get("name").String(), "item %d", k)
			}
		})
	}
}

func doFilterTests(t *T) {
	t.Run("by id", func(t *T) {
		created := t.courses(5)
		want := created[0]

		resp := t.get(coursesPath, url.Values{"id": {strconv.FormatInt(want.ID, 10)}})

		require.Equal(t, http.StatusOK, resp.Status)
		items := resp.JSON().Array()
		require.NotEmpty(t, items)
		assert.Equal(t, want.ID, items[0].Get("id").Int())
		for _, item := range items {
			assert.Equal(t, want.ID, item.Get("id").Int(), "every result should match the filter")
		}
	})

	t.Run("by name", func(t *T) {
		created := t.courses(5)
		want := created[2]

		resp := t.get(coursesPath, url.Values{"name": {want.Name}})

		require.Equal(t, http.StatusOK, resp.Status)
		items := resp.JSON().Array()
		require.NotEmpty(t, items)
		assert.Equal(t, want.Name, items[0].Get("name").String())
		for _, item := range items {
			assert.Equal(t, want.Name, item.Get("name").String(), "every result should match the filter")
		}
	})

	t.Run("no match gives empty list", func(t *T) {
		t.courses(2)

		resp := t.get(coursesPath, url.Values{"name": {"no course has this name"}})

		require.Equal(t, http.StatusOK, resp.Status)
		assert.Empty(t, resp.JSON().Array())
	})

	t.Run("non-numeric id is 400", func(t *T) {
		resp := t.get(coursesPath, url.Values{"id": {"abc"}})

		assert.Equal(t, http.StatusBadRequest, resp.Status)
	})
}

func doCreateTests(t *T) {
	t.Run("with one student", func(t *T) {
		student := t.students(1)[0]

		resp := t.post(coursesPath, map[string]interface{}{
			"id":       1,
			"name":     "Python",
			"students": []int64{student.ID},
		})

		require.Equal(t, http.StatusCreated, resp.Status)
		body := resp.JSON()
		assert.Equal(t, "Python", body.Get("name").String())
		assert.Equal(t, []int64{student.ID}, int64s(body.Get("students")))

		created := t.get(coursePath(body.Get("id").Int()), nil)
		assert.Equal(t, http.StatusOK, created.Status)
	})

	t.Run("form-encoded body", func(t *T) {
		student := t.students(1)[0]

		resp := t.postForm(coursesPath, url.Values{
			"id":       {"1"},
			"name":     {"Python"},
			"students": {strconv.FormatInt(student.ID, 10)},
		})

		require.Equal(t, http.StatusCreated, resp.Status)
		body := resp.JSON()
		assert.Equal(t, "Python", body.Get("name").String())
		assert.Equal(t, []int64{student.ID}, int64s(body.Get("students")))
	})

	t.Run("unknown student is 400", func(t *T) {
		student := t.students(1)[0]

		resp := t.post(coursesPath, map[string]interface{}{
			"name":     "Python",
			"students": []int64{student.ID + 1000},
		})

		assert.Equal(t, http.StatusBadRequest, resp.Status)
		assert.Empty(t, t.get(coursesPath, nil).JSON().Array(), "nothing should be created")
	})

	t.Run("missing name is 400", func(t *T) {
		resp := t.post(coursesPath, map[string]interface{}{"students": []int64{}})

		assert.Equal(t, http.StatusBadRequest, resp.Status)
	})

	t.Run("too many students is 400", func(t *T) {
		limit := t.Session().MaxStudents
		if limit <= 0 {
			t.Skip("service has no student limit")
		}
		students := t.students(limit + 1)

		resp := t.post(coursesPath, map[string]interface{}{
			"name":     "Crowded",
			"students": studentIDs(students),
		})

		assert.Equal(t, http.StatusBadRequest, resp.Status)
	})
}

func doUpdateTests(t *T) {
	t.Run("students round-trip", func(t *T) {
		course := t.course()
		ids := studentIDs(t.students(2))

		resp := t.patch(coursePath(course.ID), map[string]interface{}{
			"name":     "Python",
			"students": ids,
		})

		require.Equal(t, http.StatusOK, resp.Status)
		assert.Equal(t, ids, int64s(resp.JSON().Get("students")))

		reread := t.get(coursePath(course.ID), nil)
		require.Equal(t, http.StatusOK, reread.Status)
		assert.Equal(t, ids, int64s(reread.JSON().Get("students")))
		assert.Equal(t, "Python", reread.JSON().Get("name").String())
	})

	t.Run("form-encoded students round-trip", func(t *T) {
		course := t.course()
		ids := studentIDs(t.students(2))

		resp := t.patchForm(coursePath(course.ID), url.Values{
			"name":     {"Python"},
			"students": {strconv.FormatInt(ids[0], 10), strconv.FormatInt(ids[1], 10)},
		})

		require.Equal(t, http.StatusOK, resp.Status)
		assert.Equal(t, "Python", resp.JSON().Get("name").String())
		assert.Equal(t, ids, int64s(resp.JSON().Get("students")))
	})

	t.Run("empty body changes nothing", func(t *T) {
		students := studentIDs(t.students(1))
		courses, err := t.Fixtures().Courses.Create(t.Ctx(), fixtures.CourseOptions{
			Overrides: fixtures.CourseOverrides{Students: students},
		})
		require.NoError(t, err)

		resp := t.patch(coursePath(courses[0].ID), nil)

		require.Equal(t, http.StatusOK, resp.Status)
		assert.Equal(t, courses[0].Name, resp.JSON().Get("name").String())
		assert.Equal(t, students, int64s(resp.JSON().Get("students")))
	})

	t.Run("students replace previous set", func(t *T) {
		students := studentIDs(t.students(3))
		courses, err := t.Fixtures().Courses.Create(t.Ctx(), fixtures.CourseOptions{
			Overrides: fixtures.CourseOverrides{Students: students[:2]},
		})
		require.NoError(t, err)

		resp := t.patch(coursePath(courses[0].ID), map[string]interface{}{"students": students[2:]})

		require.Equal(t, http.StatusOK, resp.Status)
		assert.Equal(t, students[2:], int64s(resp.JSON().Get("students")))
	})

	t.Run("name only keeps students", func(t *T) {
		students := studentIDs(t.students(1))
		courses, err := t.Fixtures().Courses.Create(t.Ctx(), fixtures.CourseOptions{
			Overrides: fixtures.CourseOverrides{Students: students},
		})
		require.NoError(t, err)

		resp := t.patch(coursePath(courses[0].ID), map[string]interface{}{"name": "Renamed"})

		require.Equal(t, http.StatusOK, resp.Status)
		assert.Equal(t, "Renamed", resp.JSON().Get("name").String())
		assert.Equal(t, students, int64s(resp.JSON().Get("students")))
	})

	t.Run("put replaces the course", func(t *T) {
		students := studentIDs(t.students(1))
		courses, err := t.Fixtures().Courses.Create(t.Ctx(), fixtures.CourseOptions{
			Overrides: fixtures.CourseOverrides{Students: students},
		})
		require.NoError(t, err)

		resp := t.put(coursePath(courses[0].ID), map[string]interface{}{"name": "Replaced", "students": []int64{}})

		require.Equal(t, http.StatusOK, resp.Status)
		assert.Equal(t, "Replaced", resp.JSON().Get("name").String())
		assert.Empty(t, int64s(resp.JSON().Get("students")))
	})

	t.Run("unknown course is 404", func(t *T) {
		course := t.course()

		resp := t.patch(coursePath(course.ID+1000), map[string]interface{}{"name": "Nope"})

		assert.Equal(t, http.StatusNotFound, resp.Status)
	})
}

func doDeleteTests(t *T) {
	t.Run("existing course", func(t *T) {
		course := t.course()

		resp := t.delete(coursePath(course.ID))

		require.Equal(t, http.StatusNoContent, resp.Status)
		assert.Empty(t, resp.Body)
	})

	t.Run("deleted course is no longer retrievable", func(t *T) {
		course := t.course()
		require.Equal(t, http.StatusNoContent, t.delete(coursePath(course.ID)).Status)

		assert.Equal(t, http.StatusNotFound, t.get(coursePath(course.ID), nil).Status)
		assert.Equal(t, http.StatusNotFound, t.delete(coursePath(course.ID)).Status)
	})
}
