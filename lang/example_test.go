package lang_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/ardnew/umbra/lang"
)

func ExampleParse() {
	s, err := lang.Parse(context.Background(), `[HP < 30 ? "LOW " + HP : HP] / [Max | trim]`)
	if err != nil {
		fmt.Println(err)

		return
	}

	fmt.Println(s.Dependencies())
	fmt.Println(s.Evaluate(lang.Builtins(), lang.PlaceholderMap{"hp": "12", "max": " 90 "}))
	fmt.Println(s.Evaluate(lang.Builtins(), lang.PlaceholderMap{"hp": "75", "max": "90"}))
	// Output:
	// [hp max]
	// LOW 12 / 90
	// 75 / 90
}

func ExampleParseError_Format() {
	_, err := lang.Parse(context.Background(), "Gold: [Gold | ]")

	var pe *lang.ParseError
	if errors.As(err, &pe) {
		fmt.Print(pe.Format())
	}
	// Output:
	// parse error at column 14: unexpected token, expected identifier "]"
	//   | Gold: [Gold | ]
	//                   ^
}
