package analyzer_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsgonest/tsmeta/internal/analyzer"
	"github.com/tsgonest/tsmeta/internal/diagnostic"
	"github.com/tsgonest/tsmeta/internal/metadata"
	"github.com/tsgonest/tsmeta/internal/testutil"
)

const widgetsFixture = `
-- src/widgets.controller.ts --
import { Widget } from './widget';

@Route('widgets')
export class WidgetsController {
  @Get('{id}')
  public async get(@Path() id: string): Promise<Widget> {
    return undefined as any;
  }

  @Get('{id}/count')
  public async count(@Path() id: string): Promise<number> {
    return 0;
  }
}
-- src/widget.ts --
export interface Widget {
  id: string;
  name?: string;
}
`

func TestWidgetsRoutesDoNotOverlap(t *testing.T) {
	md, diags := generate(t, widgetsFixture)

	c := findController(t, md, "WidgetsController")
	assert.Equal(t, "widgets", c.Path)
	require.Len(t, c.Methods, 2)
	assert.Empty(t, diags.ByCategory(diagnostic.CategoryRouteOverlap))

	get := findMethod(t, c, "get")
	assert.Equal(t, "get", get.Verb)
	assert.Equal(t, "{id}", get.Path)
	assert.Equal(t, "Get", get.OperationID)
	assert.Equal(t, &metadata.ReferenceType{ID: lookupRef(t, md, "Widget").ID, Name: "Widget"}, get.ReturnType)

	count := findMethod(t, c, "count")
	assert.Equal(t, metadata.Primitive(metadata.DataTypeDouble), count.ReturnType)
}

func TestWidgetsFullOverlapWarns(t *testing.T) {
	archive := strings.Replace(widgetsFixture, "  @Get('{id}/count')", `  @Get('{key}')
  public async byKey(@Path() key: string): Promise<Widget> {
    return undefined as any;
  }

  @Get('{id}/count')`, 1)

	md, diags := generate(t, archive)

	require.Len(t, findController(t, md, "WidgetsController").Methods, 3)
	overlaps := diags.ByCategory(diagnostic.CategoryRouteOverlap)
	require.Len(t, overlaps, 1)
	assert.Contains(t, overlaps[0].Message, "full overlap")
	assert.Contains(t, overlaps[0].Message, "/widgets/{id}")
	assert.Contains(t, overlaps[0].Message, "/widgets/{key}")
}

func TestWidgetsDuplicateSignatureIsFatal(t *testing.T) {
	archive := strings.Replace(widgetsFixture, "  @Get('{id}/count')", `  @Get('{id}')
  public async again(@Path() id: string): Promise<Widget> {
    return undefined as any;
  }

  @Get('{id}/count')`, 1)

	err := generateErr(t, archive)
	assert.True(t, analyzer.IsGenerateMetadataError(err, analyzer.CategoryAnnotation))
	assert.Contains(t, err.Error(), "Duplicate method signature @get(widgets/{id}) found in controllers: WidgetsController#get, WidgetsController#again")
}

func TestDuplicateSignatureAcrossControllers(t *testing.T) {
	err := generateErr(t, `
-- a.controller.ts --
@Route('items')
export class AController {
  @Post()
  public create(): void {}
}
-- b.controller.ts --
@Route('/items/')
export class BController {
  @Post('')
  public add(): void {}
}
`)
	assert.Contains(t, err.Error(), "found in controllers: AController#create, BController#add")
}

func TestPartialOverlapWarns(t *testing.T) {
	md, diags := generate(t, `
-- users.controller.ts --
@Route('users')
export class UsersController {
  @Get('{id}')
  public one(@Path() id: string): string { return id; }

  @Get('me')
  public me(): string { return ''; }
}
`)
	require.Len(t, md.Controllers, 1)
	overlaps := diags.ByCategory(diagnostic.CategoryRouteOverlap)
	require.Len(t, overlaps, 1)
	assert.Contains(t, overlaps[0].Message, "partial overlap")
}

func TestNoMatchingFilesIsConfigError(t *testing.T) {
	env := setupGenerator(t, `
-- src/readme.md --
nothing here
`)
	_, err := env.gen.Generate(context.Background())
	require.Error(t, err)
	assert.True(t, analyzer.IsGenerateMetadataError(err, analyzer.CategoryConfig))
}

func TestMissingInputsIsConfigError(t *testing.T) {
	_, err := analyzer.NewGenerator(analyzer.Options{Fs: testutil.NewMemFS(nil)})
	require.Error(t, err)
	var gme *analyzer.GenerateMetadataError
	require.True(t, errors.As(err, &gme))
	assert.Equal(t, analyzer.CategoryConfig, gme.Category)
}

func TestEntryFileFollowsImports(t *testing.T) {
	md, _ := generate(t, `
-- src/index.ts --
export * from './orders/orders.controller';
-- src/orders/orders.controller.ts --
import { Order } from './order';

@Route('orders')
export class OrdersController {
  @Get()
  public list(): Order[] { return []; }
}
-- src/orders/order.ts --
export interface Order { id: number; }
`, func(o *analyzer.Options) {
		o.ControllerPathGlobs = nil
		o.EntryFile = "src/index.ts"
	})

	c := findController(t, md, "OrdersController")
	assert.Equal(t, testutil.Path("src/orders/orders.controller.ts"), c.Location)
	list := findMethod(t, c, "list")
	arr, ok := list.ReturnType.(*metadata.ArrayType)
	require.True(t, ok)
	assert.Equal(t, "Order", arr.ElementType.(*metadata.ReferenceType).Name)
}

const aliasFixture = `
-- src/orders/orders.controller.ts --
import { Order } from '@app/domain/order';
import { Money } from 'shared';

@Route('orders')
export class OrdersController {
  @Get()
  public list(): Order[] { return []; }

  @Get('total')
  public total(): Money { return undefined as any; }
}
-- src/domain/order.ts --
export interface Order { id: number; }
-- libs/shared/index.ts --
export interface Money { amount: number; currency: string; }
`

func TestPathAliasesFollowImports(t *testing.T) {
	md, _ := generate(t, aliasFixture, func(o *analyzer.Options) {
		o.Paths = map[string][]string{
			"@app/*": {"src/*"},
			"shared": {"libs/shared"},
		}
	})

	lookupRef(t, md, "Order")
	lookupRef(t, md, "Money")
}

func TestUnresolvedAliasLeavesModelMissing(t *testing.T) {
	err := generateErr(t, aliasFixture)
	assert.Contains(t, err.Error(), "No matching model found for referenced type Order")
}

func TestIgnoreSkipsControllers(t *testing.T) {
	md, _ := generate(t, `
-- src/a.controller.ts --
@Route('a')
export class AController {
  @Get()
  public get(): string { return ''; }
}
-- src/legacy/b.controller.ts --
@Route('b')
export class BController {
  @Get()
  public get(): string { return ''; }
}
`, func(o *analyzer.Options) { o.Ignore = []string{"**/legacy/**"} })

	require.Len(t, md.Controllers, 1)
	assert.Equal(t, "AController", md.Controllers[0].Name)
}

const cycleFixture = `
-- graph.controller.ts --
@Route('graph')
export class GraphController {
  @Get()
  public root(): A { return undefined as any; }
}

export interface A {
  name: string;
  b?: B;
}

export interface B {
  a: A;
  siblings: B[];
}
`

func TestCircularReferencesTerminate(t *testing.T) {
	md, _ := generate(t, cycleFixture)

	require.NoError(t, md.ReferenceTypeMap.Validate())
	assert.Empty(t, md.ReferenceTypeMap.Placeholders())

	a := lookupRef(t, md, "A")
	b := lookupRef(t, md, "B")
	assert.Equal(t, metadata.RefObject, a.Kind)
	assert.Equal(t, metadata.RefObject, b.Kind)
	require.Len(t, a.Properties, 2)
	require.Len(t, b.Properties, 2)

	assert.Equal(t, &metadata.ReferenceType{ID: b.ID, Name: "B"}, findProperty(t, a.Properties, "b").Type)
	assert.Equal(t, &metadata.ReferenceType{ID: a.ID, Name: "A"}, findProperty(t, b.Properties, "a").Type)
	siblings := findProperty(t, b.Properties, "siblings").Type.(*metadata.ArrayType)
	assert.Equal(t, &metadata.ReferenceType{ID: b.ID, Name: "B"}, siblings.ElementType)
}

func TestGenerateRunsAreIsolated(t *testing.T) {
	env := setupGenerator(t, cycleFixture)

	first, err := env.gen.Generate(context.Background())
	require.NoError(t, err)
	firstJSON, err := first.MarshalIndent()
	require.NoError(t, err)

	second, err := env.gen.Generate(context.Background())
	require.NoError(t, err)
	secondJSON, err := second.MarshalIndent()
	require.NoError(t, err)

	assert.NotSame(t, first.ReferenceTypeMap, second.ReferenceTypeMap)
	if diff := cmp.Diff(string(firstJSON), string(secondJSON)); diff != "" {
		t.Errorf("second run differs (-first +second):\n%s", diff)
	}
	again, err := first.MarshalIndent()
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(again), "second run mutated the first result")
}

func TestAliasReusedByTwoProperties(t *testing.T) {
	md, _ := generate(t, `
-- docs.controller.ts --
/** A document reference. */
export type Ref = string;

export interface Doc {
  parent: Ref;
  child?: Ref;
}

@Route('docs')
export class DocsController {
  @Get()
  public get(): Doc { return undefined as any; }
}
`)
	names := md.ReferenceTypeMap.Names()
	assert.Equal(t, []string{"Doc", "Ref"}, names)

	ref := lookupRef(t, md, "Ref")
	assert.Equal(t, metadata.RefAlias, ref.Kind)
	assert.Equal(t, "A document reference.", ref.Description)

	doc := lookupRef(t, md, "Doc")
	parent := findProperty(t, doc.Properties, "parent")
	child := findProperty(t, doc.Properties, "child")
	assert.Equal(t, parent.Type, child.Type)
	assert.True(t, parent.Required)
	assert.False(t, child.Required)
}

func TestGenericInstantiationNamesAreStable(t *testing.T) {
	md, _ := generate(t, `
-- page.controller.ts --
export interface User { id: number; }

export interface Page<T, M = string> {
  items: T[];
  meta: M;
}

@Route('pages')
export class PageController {
  @Get('a')
  public a(): Page<User> { return undefined as any; }

  @Get('b')
  public b(): Page<User, string> { return undefined as any; }

  @Get('c')
  public c(): Page<User[]> { return undefined as any; }
}
`)
	c := findController(t, md, "PageController")
	a := findMethod(t, c, "a").ReturnType.(*metadata.ReferenceType)
	b := findMethod(t, c, "b").ReturnType.(*metadata.ReferenceType)
	cc := findMethod(t, c, "c").ReturnType.(*metadata.ReferenceType)

	assert.Equal(t, "Page_User.string_", a.Name)
	assert.Equal(t, a, b)
	assert.Equal(t, "Page_User-Array.string_", cc.Name)

	page := lookupRef(t, md, "Page_User.string_")
	items := findProperty(t, page.Properties, "items").Type.(*metadata.ArrayType)
	assert.Equal(t, "User", items.ElementType.(*metadata.ReferenceType).Name)
	assert.Equal(t, metadata.Primitive(metadata.DataTypeString), findProperty(t, page.Properties, "meta").Type)
}

func TestUnresolvableTypeCarriesLocation(t *testing.T) {
	err := generateErr(t, `
-- broken.controller.ts --
@Route('broken')
export class BrokenController {
  @Get()
  public get(): Missing { return undefined as any; }
}
`)
	var gme *analyzer.GenerateMetadataError
	require.True(t, errors.As(err, &gme))
	assert.Equal(t, analyzer.CategoryType, gme.Category)
	assert.Equal(t, "BrokenController.get", gme.Method)
	assert.Equal(t, testutil.Path("broken.controller.ts"), gme.Pos.File)
	assert.Equal(t, 4, gme.Pos.Line)
	assert.Contains(t, gme.Error(), "No matching model found for referenced type Missing.")
	assert.Contains(t, gme.Error(), "public get(): Missing")
}

func TestAmbiguousModelIsFatal(t *testing.T) {
	err := generateErr(t, `
-- dup.controller.ts --
import { Thing } from './one';
import './two';

@Route('dup')
export class DupController {
  @Get()
  public get(): Thing { return undefined as any; }
}
-- one.ts --
export class Thing { a: string; }
-- two.ts --
export type Thing = { b: number };
`)
	assert.Contains(t, err.Error(), "Multiple matching models found for referenced type Thing")
}

func TestSharedMethodNamesGetQualifiedOperationIDs(t *testing.T) {
	md, _ := generate(t, `
-- src/users.controller.ts --
@Route('users')
export class UsersController {
  @Get()
  public list(): string[] { return []; }

  @Get('{id}')
  public get(@Path() id: string): string { return ''; }
}
-- src/orders.controller.ts --
@Route('orders')
export class OrdersController {
  @Get()
  public list(): string[] { return []; }

  @Get('{id}')
  @OperationId('fetchOrder')
  public get(@Path() id: string): string { return ''; }

  @Post()
  public create(): void {}
}
`)
	users := findController(t, md, "UsersController")
	orders := findController(t, md, "OrdersController")
	assert.Equal(t, "UsersList", findMethod(t, users, "list").OperationID)
	assert.Equal(t, "OrdersList", findMethod(t, orders, "list").OperationID)
	assert.Equal(t, "Get", findMethod(t, users, "get").OperationID, "unique once the explicit id is taken into account")
	assert.Equal(t, "fetchOrder", findMethod(t, orders, "get").OperationID)
	assert.Equal(t, "Create", findMethod(t, orders, "create").OperationID)
}
