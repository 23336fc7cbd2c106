package container_test

import (
	"context"
	"fmt"

	"github.com/loomdi/loom/container"
)

// Types used in examples only.
type DB struct{ DSN string }
type RequestLog struct{ Scope string }

func ExampleNew() {
	c := container.New()
	_ = c.Build(
		container.Singleton("db", func(...any) (any, error) {
			return &DB{DSN: "postgres://localhost"}, nil
		}),
	)

	v, _ := c.GetService(context.Background(), "db")
	fmt.Println(v.(*DB).DSN)
	// Output: postgres://localhost
}

func ExampleTransient() {
	c := container.New()
	_ = c.Build(
		container.Transient("db", func(...any) (any, error) {
			return &DB{DSN: "fresh"}, nil
		}),
	)

	ctx := context.Background()
	first, _ := c.GetService(ctx, "db")
	second, _ := c.GetService(ctx, "db")
	fmt.Println(first == second)
	// Output: false
}

func ExampleContainer_Resolve() {
	c := container.New()
	_ = c.Build(
		container.Singleton("dsn", func(...any) (any, error) {
			return "postgres://localhost", nil
		}),
		container.Singleton("db", func(deps ...any) (any, error) {
			return &DB{DSN: deps[0].(string)}, nil
		}, container.WithDependencies("dsn")),
	)

	out, err := c.Resolve(context.Background(), func(deps ...any) (any, error) {
		return "connected to " + deps[0].(*DB).DSN, nil
	}, "db")
	if err != nil {
		panic(err)
	}
	fmt.Println(out)
	// Output: connected to postgres://localhost
}

func ExampleContainer_StartScope() {
	c := container.New()
	_ = c.Build(
		container.Scoped("reqlog", func(...any) (any, error) {
			return &RequestLog{Scope: "request"}, nil
		}),
	)

	_ = c.StartScope(context.Background(), func(ctx context.Context) error {
		first, _ := c.GetService(ctx, "reqlog")
		second, _ := c.GetService(ctx, "reqlog")
		fmt.Println(first == second)
		return nil
	})
	// Output: true
}
