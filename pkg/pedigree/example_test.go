package pedigree_test

import (
	"fmt"

	"github.com/matzehuels/pedigree/pkg/pedigree"
	"github.com/matzehuels/pedigree/pkg/pedigree/depth"
)

func ExampleNew() {
	// A couple and their two children
	p, err := pedigree.New(
		[]string{"dad", "mom", "son", "daughter"},
		[]int{pedigree.NoParent, pedigree.NoParent, 0, 0},
		[]int{pedigree.NoParent, pedigree.NoParent, 1, 1},
		[]pedigree.Sex{pedigree.Male, pedigree.Female, pedigree.Male, pedigree.Female},
	)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println("Individuals:", p.Len())
	fmt.Println("Founders:", p.Founders())
	fmt.Println("Children:", p.Children(0, 1))
	// Output:
	// Individuals: 4
	// Founders: [0 1]
	// Children: [2 3]
}

func ExamplePedigree_SharesAncestor() {
	// Siblings 2 and 3 each marry a founder; their children 5 and 7 are
	// first cousins through grandparents 0 and 1.
	none := pedigree.NoParent
	p, _ := pedigree.New(nil,
		[]int{none, none, 0, 0, none, 2, none, 6},
		[]int{none, none, 1, 1, none, 4, none, 3},
		[]pedigree.Sex{pedigree.Male, pedigree.Female, pedigree.Male, pedigree.Female,
			pedigree.Female, pedigree.Male, pedigree.Male, pedigree.Female},
	)
	fmt.Println("cousins:", p.SharesAncestor(5, 7))
	fmt.Println("in-laws:", p.SharesAncestor(4, 6))
	// Output:
	// cousins: true
	// in-laws: false
}

func Example_depth() {
	// Grandparents, a married-in spouse, and a grandchild
	father := []int{pedigree.NoParent, pedigree.NoParent, 0, pedigree.NoParent, 2}
	mother := []int{pedigree.NoParent, pedigree.NoParent, 1, pedigree.NoParent, 3}

	plain, _ := depth.Compute(father, mother, depth.Options{})
	aligned, _ := depth.Compute(father, mother, depth.Options{AlignSpouses: true})
	fmt.Println("plain:  ", plain)
	fmt.Println("aligned:", aligned)
	// Output:
	// plain:   [0 0 1 0 2]
	// aligned: [0 0 1 1 2]
}
