package openapi_test

import (
	"context"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tsgonest/tsmeta/internal/analyzer"
	"github.com/tsgonest/tsmeta/internal/metadata"
	"github.com/tsgonest/tsmeta/internal/openapi"
	"github.com/tsgonest/tsmeta/internal/testutil"
)

const storeFixture = `
-- store.controller.ts --
/** An item for sale. */
export interface Item {
  id: string;
  /** @minLength 1 */
  name: string;
  price?: number;
  tags: string[];
  status: Status;
  parent?: Item | null;
}

export enum Status { Active = 'active', Retired = 'retired' }

export interface NewItem { name: string; price: number; }

export interface ListFilter {
  q?: string;
  /** @isInt */
  page: number;
  ids?: string[];
}

export interface Problem { message: string; }

@Route('store')
@Tags('Store')
@Security('bearer')
@Response<Problem>(500, 'Server error')
export class StoreController {
  /** @summary List items */
  @Get('items')
  public list(@Queries() filter: ListFilter): Promise<Item[]> { return undefined as any; }

  @Get('items/:id')
  public get(@Path() id: string, @Header('x-trace') trace?: string): Promise<Item> { return undefined as any; }

  @Post('items')
  @SuccessResponse(201, 'Created')
  @Example<Item>({ id: 'a', name: 'Lamp', tags: [], status: 'active' }, 'lamp')
  public create(@Body() body: NewItem): Promise<Item> { return undefined as any; }

  @Patch('items/{id}')
  @NoSecurity()
  public rename(@Path() id: string, @BodyProp('name') name: string): Promise<void> { return undefined as any; }

  @Post('items/{id}/image')
  public upload(@Path() id: string, @UploadedFile() image: File, @FormField() caption?: string): Promise<void> { return undefined as any; }

  @Delete('items/{id}')
  @Hidden()
  public purge(@Path() id: string): Promise<void> { return undefined as any; }
}
`

func generateDoc(t *testing.T, archive string, cfg openapi.DocumentConfig) *openapi3.T {
	t.Helper()
	gen, err := analyzer.NewGenerator(analyzer.Options{
		ControllerPathGlobs: []string{"**/*.controller.ts"},
		Fs:                  testutil.TxtarFS(t, archive),
		Cwd:                 testutil.Root,
		Logger:              zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	md, err := gen.Generate(context.Background())
	require.NoError(t, err)
	return openapi.NewGenerator(cfg).Generate(md)
}

func storeConfig() openapi.DocumentConfig {
	return openapi.DocumentConfig{
		Title:    "Store",
		Version:  "1.2.0",
		BasePath: "/api",
		SecuritySchemes: map[string]*openapi3.SecurityScheme{
			"bearer": {Type: "http", Scheme: "bearer"},
		},
	}
}

func TestGenerateStoreDocument(t *testing.T) {
	doc := generateDoc(t, storeFixture, storeConfig())

	assert.Equal(t, openapi.Version, doc.OpenAPI)
	assert.Equal(t, "Store", doc.Info.Title)
	require.Len(t, doc.Servers, 1)
	assert.Equal(t, "/api", doc.Servers[0].URL)
	require.Len(t, doc.Tags, 1)
	assert.Equal(t, "Store", doc.Tags[0].Name)

	assert.ElementsMatch(t,
		[]string{"/store/items", "/store/items/{id}", "/store/items/{id}/image"},
		keys(doc.Paths.Map()))

	require.NoError(t, openapi.ValidateDocument(context.Background(), doc))
}

func TestOperationParameters(t *testing.T) {
	doc := generateDoc(t, storeFixture, storeConfig())

	list := doc.Paths.Value("/store/items").Get
	require.NotNil(t, list)
	assert.Equal(t, "List items", list.Summary)
	names := make([]string, len(list.Parameters))
	for i, p := range list.Parameters {
		names[i] = p.Value.Name
		assert.Equal(t, openapi3.ParameterInQuery, p.Value.In)
	}
	assert.Equal(t, []string{"q", "page", "ids"}, names)
	assert.True(t, list.Parameters[1].Value.Required)
	assert.Equal(t, "int32", list.Parameters[1].Value.Schema.Value.Format)
	require.NotNil(t, list.Parameters[2].Value.Explode)
	assert.True(t, *list.Parameters[2].Value.Explode)

	get := doc.Paths.Value("/store/items/{id}").Get
	require.NotNil(t, get)
	require.Len(t, get.Parameters, 2)
	assert.Equal(t, openapi3.ParameterInPath, get.Parameters[0].Value.In)
	assert.True(t, get.Parameters[0].Value.Required)
	assert.Equal(t, "x-trace", get.Parameters[1].Value.Name)
	assert.False(t, get.Parameters[1].Value.Required)
}

func TestOperationBodies(t *testing.T) {
	doc := generateDoc(t, storeFixture, storeConfig())

	create := doc.Paths.Value("/store/items").Post
	require.NotNil(t, create)
	body := create.RequestBody.Value
	assert.True(t, body.Required)
	assert.Equal(t, "#/components/schemas/NewItem", body.Content.Get("application/json").Schema.Ref)

	created := create.Responses.Value("201")
	require.NotNil(t, created)
	assert.Equal(t, "Created", *created.Value.Description)
	media := created.Value.Content.Get("application/json")
	assert.Equal(t, "#/components/schemas/Item", media.Schema.Ref)
	require.Contains(t, media.Examples, "lamp")
	assert.NotNil(t, create.Responses.Value("500"))

	rename := doc.Paths.Value("/store/items/{id}").Patch
	require.NotNil(t, rename)
	props := rename.RequestBody.Value.Content.Get("application/json").Schema.Value
	assert.Contains(t, props.Properties, "name")
	assert.Equal(t, []string{"name"}, props.Required)
	assert.Empty(t, *rename.Security, "@NoSecurity yields an empty requirement list")
	noContent := rename.Responses.Value("204")
	require.NotNil(t, noContent)
	assert.Empty(t, noContent.Value.Content)

	upload := doc.Paths.Value("/store/items/{id}/image").Post
	form := upload.RequestBody.Value.Content.Get("multipart/form-data").Schema.Value
	assert.Equal(t, "binary", form.Properties["image"].Value.Format)
	assert.Equal(t, []string{"image"}, form.Required)

	assert.Nil(t, doc.Paths.Value("/store/items/{id}").Delete, "hidden methods are left out")
}

func TestComponentSchemas(t *testing.T) {
	doc := generateDoc(t, storeFixture, storeConfig())
	schemas := doc.Components.Schemas

	item := schemas["Item"].Value
	assert.Equal(t, "An item for sale.", item.Description)
	assert.Equal(t, []string{"id", "name", "tags", "status"}, item.Required)
	assert.Equal(t, uint64(1), item.Properties["name"].Value.MinLength)
	assert.Equal(t, "#/components/schemas/Status", item.Properties["status"].Ref)

	parent := item.Properties["parent"].Value
	assert.True(t, parent.Nullable)
	require.Len(t, parent.AllOf, 1)
	assert.Equal(t, "#/components/schemas/Item", parent.AllOf[0].Ref)

	status := schemas["Status"].Value
	assert.Equal(t, []any{"active", "retired"}, status.Enum)
	assert.Equal(t, []string{"Active", "Retired"}, status.Extensions["x-enum-varnames"])

	require.Contains(t, doc.Components.SecuritySchemes, "bearer")
	get := doc.Paths.Value("/store/items/{id}").Get
	assert.Equal(t, openapi3.SecurityRequirements{{"bearer": {}}}, *get.Security)
}

func TestSecurityNamesMatchConfiguredSchemesIgnoringCase(t *testing.T) {
	cfg := storeConfig()
	cfg.SecuritySchemes = map[string]*openapi3.SecurityScheme{"BEARER": {Type: "http", Scheme: "bearer"}}
	doc := generateDoc(t, storeFixture, cfg)

	get := doc.Paths.Value("/store/items/{id}").Get
	assert.Equal(t, openapi3.SecurityRequirements{{"BEARER": {}}}, *get.Security)
}

func TestDuplicateOperationIDIsReported(t *testing.T) {
	doc := generateDoc(t, `
-- dup.controller.ts --
@Route('a')
export class AController {
  @Get('one')
  @OperationId('fetch')
  public one(): string { return ''; }

  @Get('two')
  @OperationId('fetch')
  public two(): string { return ''; }
}
`, openapi.DocumentConfig{})

	err := openapi.ValidateDocument(context.Background(), doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate operationId "fetch"`)
}

func TestEncode(t *testing.T) {
	doc := generateDoc(t, storeFixture, storeConfig())

	data, err := openapi.Encode(doc, metadata.FormatJSON)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{"))
	assert.Regexp(t, `"openapi":\s*"3\.0\.3"`, string(data))

	data, err = openapi.Encode(doc, metadata.FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, string(data), "openapi: 3.0.3")

	_, err = openapi.Encode(doc, "xml")
	require.Error(t, err)
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
