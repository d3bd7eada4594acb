package grouping_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/okian/pong/internal/domain/grouping"
	. "github.com/smartystreets/goconvey/convey"
)

const testSeed = 42

func teamIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("t%02d", i)
	}
	return ids
}

func TestSnake(t *testing.T) {
	Convey("Given seven ids dealt into three groups", t, func() {
		groups := grouping.Snake([]string{"a", "b", "c", "d", "e", "f", "g"}, 3)

		Convey("Then direction alternates every row", func() {
			So(groups[0], ShouldResemble, []string{"a", "f", "g"})
			So(groups[1], ShouldResemble, []string{"b", "e"})
			So(groups[2], ShouldResemble, []string{"c", "d"})
		})
	})
}

func TestAllocate(t *testing.T) {
	Convey("Given a seeded allocator", t, func() {
		a := grouping.NewAllocator(grouping.WithSeed(testSeed))

		Convey("For every team count and valid group count", func() {
			for n := 1; n <= 17; n++ {
				for g := 1; g <= n; g++ {
					ids := teamIDs(n)
					groups, err := a.Allocate(ids, g)
					So(err, ShouldBeNil)
					So(groups, ShouldHaveLength, g)

					seen := map[string]int{}
					minSize, maxSize := n, 0
					for _, grp := range groups {
						minSize = min(minSize, len(grp))
						maxSize = max(maxSize, len(grp))
						for _, id := range grp {
							seen[id]++
						}
					}
					So(len(seen), ShouldEqual, n)
					for _, count := range seen {
						So(count, ShouldEqual, 1)
					}
					So(maxSize-minSize, ShouldBeLessThanOrEqualTo, 1)
				}
			}
		})

		Convey("The input slice is left untouched", func() {
			ids := teamIDs(6)
			_, err := a.Allocate(ids, 2)
			So(err, ShouldBeNil)
			So(ids, ShouldResemble, teamIDs(6))
		})

		Convey("Zero teams yields empty groups", func() {
			groups, err := a.Allocate(nil, 3)
			So(err, ShouldBeNil)
			So(groups, ShouldHaveLength, 3)
			for _, grp := range groups {
				So(grp, ShouldBeEmpty)
			}
		})

		Convey("Out of range group counts are rejected", func() {
			_, err := a.Allocate(teamIDs(3), 0)
			So(errors.Is(err, grouping.ErrInvalidGroupCount), ShouldBeTrue)
			_, err = a.Allocate(teamIDs(3), 4)
			So(errors.Is(err, grouping.ErrInvalidGroupCount), ShouldBeTrue)
		})
	})

	Convey("Given two allocators with the same seed", t, func() {
		first, _ := grouping.NewAllocator(grouping.WithSeed(7)).Allocate(teamIDs(10), 3)
		second, _ := grouping.NewAllocator(grouping.WithSeed(7)).Allocate(teamIDs(10), 3)

		Convey("Then allocation is reproducible", func() {
			So(first, ShouldResemble, second)
		})
	})
}
