package phpwire_test

import (
	"fmt"
	"log"

	"github.com/acolita/phpwire/pkg/phpserialize"
)

func Example_unmarshalStruct() {
	// PHP: serialize(["id" => 42, "name" => "Bob", "tags" => ["foo", "bar"]])
	data := []byte(`a:3:{s:2:"id";i:42;s:4:"name";s:3:"Bob";s:4:"tags";a:2:{i:0;s:3:"foo";i:1;s:3:"bar";}}`)

	var profile struct {
		ID   int      `php:"id"`
		Name string   `php:"name"`
		Tags []string `php:"tags"`
	}
	if err := phpserialize.Unmarshal(data, &profile); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("ID: %d\n", profile.ID)
	fmt.Printf("Name: %s\n", profile.Name)
	fmt.Printf("Tags: %v\n", profile.Tags)
	// Output:
	// ID: 42
	// Name: Bob
	// Tags: [foo bar]
}

func Example_marshal() {
	data, err := phpserialize.Marshal(struct {
		Active bool    `php:"active"`
		Score  float64 `php:"score"`
	}{Active: true, Score: 1.9})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(string(data))
	// Output:
	// a:2:{s:6:"active";b:1;s:5:"score";d:1.9;}
}

func Example_optionalFields() {
	// PHP nulls map to Go pointers in both directions.
	type location struct {
		City    *string `php:"city"`
		Country *string `php:"country"`
	}

	data := []byte(`a:2:{s:4:"city";s:6:"Berlin";s:7:"country";N;}`)
	var loc location
	if err := phpserialize.Unmarshal(data, &loc); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("City: %s\n", *loc.City)
	fmt.Printf("Country set: %v\n", loc.Country != nil)
	// Output:
	// City: Berlin
	// Country set: false
}

func Example_unorderedArray() {
	// PHP arrays keep insertion order, so integer keys can arrive out of
	// order or with gaps. UnorderedArray sorts by key and drops the gaps.
	data := []byte(`a:4:{i:0;s:4:"zero";i:2;s:3:"two";i:1;s:3:"one";i:6;s:3:"six";}`)

	vals, err := phpserialize.UnmarshalUnordered[string](data)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%v\n", vals)
	// Output:
	// [zero one two six]
}

func Example_isSerialized() {
	fmt.Printf("Valid: %v\n", phpserialize.IsSerialized([]byte("i:42;")))
	fmt.Printf("Invalid: %v\n", phpserialize.IsSerialized([]byte("hello")))
	// Output:
	// Valid: true
	// Invalid: false
}
