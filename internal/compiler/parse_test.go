package compiler_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsgonest/tsmeta/internal/ast"
	"github.com/tsgonest/tsmeta/internal/compiler"
)

func parse(t *testing.T, src string) (*ast.SourceFile, []compiler.Diagnostic) {
	t.Helper()
	p := compiler.NewParser()
	defer p.Close()
	f, diags, err := p.ParseFile(context.Background(), "/project/src/file.ts", []byte(src))
	require.NoError(t, err)
	return f, diags
}

func TestParseDeclarations(t *testing.T) {
	f, diags := parse(t, `
import { Base } from './base';
export * from './more';

/** A user. */
export interface User extends Base {
  id: number;
  /** @format email */
  email?: string;
  readonly tags: string[];
}

export type Id = string | number;

enum Color { Red, Green = 5, Blue }

export class Service {}
`)
	require.Empty(t, diags)

	specs := make([]string, len(f.Imports))
	for i, imp := range f.Imports {
		specs[i] = imp.Specifier
	}
	assert.Equal(t, []string{"./base", "./more"}, specs)

	names := make([]string, len(f.Declarations))
	for i, d := range f.Declarations {
		names[i] = d.DeclName()
	}
	assert.Equal(t, []string{"User", "Id", "Color", "Service"}, names)

	user := f.Declarations[0].(*ast.InterfaceDecl)
	assert.Equal(t, "A user.", user.Doc.Description)
	require.Len(t, user.Extends, 1)
	assert.Equal(t, "Base", user.Extends[0].Name)
	require.Len(t, user.Members, 3)
	assert.True(t, user.Members[1].Optional)
	assert.Equal(t, "email", user.Members[1].Doc.Tag("format").Text)
	assert.True(t, user.Members[2].Readonly)
	assert.Equal(t, "string[]", ast.Print(user.Members[2].Type))
	assert.Equal(t, 6, user.Position.Line)

	alias := f.Declarations[1].(*ast.TypeAliasDecl)
	assert.Equal(t, "string | number", ast.Print(alias.Type))

	color := f.Declarations[2].(*ast.EnumDecl)
	values := make([]any, len(color.Members))
	for i, m := range color.Members {
		values[i] = m.Value
	}
	assert.Equal(t, []any{float64(0), float64(5), float64(6)}, values)
}

func TestParseDecorators(t *testing.T) {
	f, _ := parse(t, `
@Route('users')
@Tags('Users', 'Admin')
export class UsersController {
  /** Lists users. */
  @Get('{id}')
  @Response<Problem>(404, 'Not found')
  public async get(@Path() id: number, @Query('q') q?: string): Promise<User> {
    return undefined as any;
  }

  private helper(): void {}
}
`)
	classes := f.Classes()
	require.Len(t, classes, 1)
	c := classes[0]

	require.Len(t, c.Decorators, 2)
	assert.Equal(t, "Route", c.Decorators[0].Name)
	assert.Equal(t, []string{"Users", "Admin"}, []string{c.Decorators[1].Args[0].Str, c.Decorators[1].Args[1].Str})

	get := c.Method("get")
	require.NotNil(t, get)
	assert.Equal(t, "public", get.Accessibility)
	assert.Equal(t, "Lists users.", get.Doc.Description)
	require.Len(t, get.Decorators, 2)
	resp := get.Decorators[1]
	assert.Equal(t, "Response", resp.Name)
	assert.True(t, resp.Called)
	assert.Equal(t, "Problem", ast.Print(resp.TypeArg(0)))
	n, ok := resp.Arg(0).NumberValue()
	require.True(t, ok)
	assert.Equal(t, float64(404), n)

	require.Len(t, get.Params, 2)
	assert.Equal(t, "id", get.Params[0].Name)
	assert.Equal(t, "Path", get.Params[0].Decorators[0].Name)
	assert.True(t, get.Params[1].Optional)
	assert.Equal(t, "Promise<User>", ast.Print(get.ReturnType))

	assert.Equal(t, "private", c.Method("helper").Accessibility)
}

func TestParseConstructorParameterProperties(t *testing.T) {
	f, _ := parse(t, `
export class Point {
  constructor(public x: number, private readonly y: number, plain: string) {}
}
`)
	c := f.Classes()[0]
	require.Len(t, c.Properties, 2)
	assert.Equal(t, "x", c.Properties[0].Name)
	assert.Equal(t, "private", c.Properties[1].Accessibility)
	assert.True(t, c.Properties[1].Readonly)
	assert.Empty(t, c.Methods)
}

func TestParseReportsSyntaxErrors(t *testing.T) {
	f, diags := parse(t, `
export interface Ok { a: string; }
export interface Broken { a: ;
`)
	require.NotEmpty(t, diags)
	assert.Equal(t, "/project/src/file.ts", diags[0].FilePath)
	assert.Positive(t, diags[0].Line)
	require.NotEmpty(t, f.Declarations)
	assert.Equal(t, "Ok", f.Declarations[0].DeclName())
}
