package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsgonest/tsmeta/internal/analyzer"
	"github.com/tsgonest/tsmeta/internal/metadata"
)

// controllerFixture wraps class members in a single controller file.
func controllerFixture(models, members string) string {
	return "-- api.controller.ts --\n" + models + `
@Route('api')
export class ApiController {
` + members + `
}
`
}

func TestParameterSources(t *testing.T) {
	md, _ := generate(t, controllerFixture(`
export interface Filter {
  name?: string;
  tags: string[];
  /** @isInt */
  page: number;
}
export interface CreateItem { name: string; }
`, `
  /**
   * Lists items.
   * @param limit Maximum number of items.
   * @isInt limit
   * @minimum limit 1 limit must be positive
   */
  @Get('{id}/items')
  public list(
    @Path() id: string,
    @Query() ids: string[],
    @Query('page_size') limit: number = 20,
    @Header('x-trace') trace?: string,
    @Request() req: any,
    @Inject() service: Service,
  ): string[] { return []; }

  @Post()
  public create(@Body() body: CreateItem, @RequestProp('user') user: string): void {}

  @Get('search')
  public search(@Queries() filter: Filter): string[] { return []; }

  @Post('upload')
  public upload(@UploadedFile() file: File, @UploadedFiles() more: File[], @FormField() title: string): void {}
`))
	c := findController(t, md, "ApiController")

	list := findMethod(t, c, "list")
	require.Len(t, list.Parameters, 5, "@Inject parameters are dropped")

	id := findParam(t, list, "id")
	assert.Equal(t, metadata.InPath, id.In)
	assert.True(t, id.Required)

	ids := findParam(t, list, "ids")
	assert.Equal(t, metadata.InQuery, ids.In)
	assert.Equal(t, "multi", ids.CollectionFormat)

	limit := findParam(t, list, "limit")
	assert.Equal(t, "page_size", limit.Name)
	assert.False(t, limit.Required)
	assert.Equal(t, float64(20), limit.Default)
	assert.Equal(t, metadata.Primitive(metadata.DataTypeInteger), limit.Type)
	assert.Equal(t, "Maximum number of items.", limit.Description)
	assert.Equal(t, metadata.Validator{Value: float64(1), ErrorMessage: "limit must be positive"}, limit.Validators["minimum"])

	trace := findParam(t, list, "trace")
	assert.Equal(t, metadata.InHeader, trace.In)
	assert.Equal(t, "x-trace", trace.Name)
	assert.False(t, trace.Required)

	req := findParam(t, list, "req")
	assert.Equal(t, metadata.InRequest, req.In)

	create := findMethod(t, c, "create")
	assert.Equal(t, metadata.InBody, findParam(t, create, "body").In)
	assert.Equal(t, metadata.InRequestProp, findParam(t, create, "user").In)
	assert.Equal(t, "204", create.Responses[0].Status)

	search := findMethod(t, c, "search")
	filter := findParam(t, search, "filter")
	assert.Equal(t, metadata.InQueries, filter.In)

	upload := findMethod(t, c, "upload")
	assert.Equal(t, metadata.Primitive(metadata.DataTypeFile), findParam(t, upload, "file").Type)
	assert.Equal(t, &metadata.ArrayType{ElementType: metadata.Primitive(metadata.DataTypeFile)}, findParam(t, upload, "more").Type)
	assert.Equal(t, metadata.InFormData, findParam(t, upload, "title").In)
}

func TestUnannotatedParameterIsPath(t *testing.T) {
	md, _ := generate(t, controllerFixture("", `
  @Get('{slug}')
  public get(slug: string): string { return slug; }
`))
	p := findParam(t, findMethod(t, findController(t, md, "ApiController"), "get"), "slug")
	assert.Equal(t, metadata.InPath, p.In)
}

func TestColonPathParameter(t *testing.T) {
	md, _ := generate(t, controllerFixture("", `
  @Get(':slug')
  public get(@Path() slug: string): string { return slug; }
`))
	p := findParam(t, findMethod(t, findController(t, md, "ApiController"), "get"), "slug")
	assert.Equal(t, metadata.InPath, p.In)
}

func TestParameterErrors(t *testing.T) {
	tests := []struct {
		name    string
		models  string
		members string
		want    string
	}{
		{
			name: "path parameter missing from route",
			members: `
  @Get('items')
  public get(@Path() id: string): string { return id; }`,
			want: "@Path('id') Can't match in URL: '/api/items'",
		},
		{
			name: "body on get",
			members: `
  @Get()
  public get(@Body() body: string): string { return body; }`,
			want: "@Body('body') Can't support in GET method",
		},
		{
			name: "body with body prop",
			members: `
  @Post()
  public post(@Body() body: string, @BodyProp('x') x: string): void {}`,
			want: "Choose either during @Body or @BodyProp in ApiController.post",
		},
		{
			name: "body with form field",
			members: `
  @Post()
  public post(@Body() body: string, @FormField() caption: string): void {}`,
			want: "@Body or @BodyProp cannot be used with form fields or uploaded files in ApiController.post",
		},
		{
			name: "body with uploaded file",
			members: `
  @Post()
  public post(@Body() body: string, @UploadedFile() image: File): void {}`,
			want: "@Body or @BodyProp cannot be used with form fields or uploaded files in ApiController.post",
		},
		{
			name: "two bodies",
			members: `
  @Post()
  public post(@Body() a: string, @Body() b: string): void {}`,
			want: "Only one body parameter allowed in ApiController.post",
		},
		{
			name:   "queries with query",
			models: `export interface Q { a: string; }`,
			members: `
  @Get()
  public get(@Queries() q: Q, @Query() b: string): void {}`,
			want: "Choose either during @Query or @Queries in ApiController.get",
		},
		{
			name:   "two queries",
			models: `export interface Q { a: string; }`,
			members: `
  @Get()
  public get(@Queries() q: Q, @Queries() r: Q): void {}`,
			want: "Only one queries parameter allowed in ApiController.get",
		},
		{
			name: "queries on a primitive",
			members: `
  @Get()
  public get(@Queries() q: string): void {}`,
			want: "@Queries('q') only support 'refObject' or 'nestedObjectLiteral' types",
		},
		{
			name:   "queries with nested object",
			models: `export interface Q { inner: { a: string }; }`,
			members: `
  @Get()
  public get(@Queries() q: Q): void {}`,
			want: "nested property 'inner'",
		},
		{
			name: "hidden required query",
			members: `
  @Get()
  public get(@Query() @Hidden() secret: string): void {}`,
			want: "Can't support @Hidden because it is required",
		},
		{
			name:   "object path parameter",
			models: `export interface Obj { a: string; }`,
			members: `
  @Get('{obj}')
  public get(@Path() obj: Obj): void {}`,
			want: "@Path('obj') can't support 'reference' type",
		},
		{
			name: "two verbs",
			members: `
  @Get()
  @Post()
  public both(): void {}`,
			want: "Only one HTTP Method decorator in 'both' method is acceptable, Found: @Get, @Post",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := generateErr(t, controllerFixture(tt.models, tt.members))
			assert.True(t, analyzer.IsGenerateMetadataError(err, analyzer.CategoryAnnotation), "got %v", err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestHiddenOptionalQueryIsDropped(t *testing.T) {
	md, _ := generate(t, controllerFixture("", `
  @Get()
  public get(@Query() @Hidden() debug?: boolean, @Query() q: string): void {}
`))
	get := findMethod(t, findController(t, md, "ApiController"), "get")
	require.Len(t, get.Parameters, 1)
	assert.Equal(t, "q", get.Parameters[0].Name)
}

func TestResParameterExpandsPerStatus(t *testing.T) {
	md, _ := generate(t, controllerFixture(`
export interface NotFound { reason: string; }
`, `
  /** @param notFound The item does not exist. */
  @Get('{id}')
  public get(@Path() id: string, @Res() notFound: TsoaResponse<404 | 410, NotFound, { 'x-reason': string }>): string { return id; }
`))
	get := findMethod(t, findController(t, md, "ApiController"), "get")

	var res []*metadata.Parameter
	for _, p := range get.Parameters {
		if p.In == metadata.InRes {
			res = append(res, p)
		}
	}
	require.Len(t, res, 2)
	assert.Equal(t, "404", res[0].Name)
	assert.Equal(t, "410", res[1].Name)
	assert.Equal(t, "notFound", res[0].ParameterName)
	assert.Equal(t, "NotFound", res[0].Type.(*metadata.ReferenceType).Name)
	assert.IsType(t, &metadata.ObjectLiteralType{}, res[0].Headers)

	statuses := make([]string, len(get.Responses))
	for i, r := range get.Responses {
		statuses[i] = r.Status
	}
	assert.Equal(t, []string{"200", "404", "410"}, statuses)
	assert.Equal(t, "The item does not exist.", get.Responses[1].Description)
}
