package helpers

import "testing"

func TestPostsEndpoint(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "keeps embed url as is",
			in:   "http://wp-api-demo.dev/wp-json/wp/v2/posts?context=embed",
			want: "http://wp-api-demo.dev/wp-json/wp/v2/posts?context=embed",
		},
		{
			name: "adds embed context",
			in:   "http://wp-api-demo.dev/wp-json/wp/v2/posts",
			want: "http://wp-api-demo.dev/wp-json/wp/v2/posts?context=embed",
		},
		{
			name: "overrides other contexts and keeps params",
			in:   "https://Blog.Example.com:443/wp-json/wp/v2/posts?per_page=5&context=view#top",
			want: "https://blog.example.com/wp-json/wp/v2/posts?context=embed&per_page=5",
		},
		{
			name: "defaults http and cleans path",
			in:   "example.com/wp-json//wp/v2/../v2/posts",
			want: "http://example.com/wp-json/wp/v2/posts?context=embed",
		},
		{
			name: "schemeless with port",
			in:   "//localhost:8080/wp-json/wp/v2/posts",
			want: "http://localhost:8080/wp-json/wp/v2/posts?context=embed",
		},
		{
			name: "keeps trailing slash",
			in:   "http://example.com:80/posts/",
			want: "http://example.com/posts/?context=embed",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := PostsEndpoint(tt.in)
			if err != nil {
				t.Fatalf("PostsEndpoint() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("PostsEndpoint() got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPostsEndpoint_Errors(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"", "   ", "ftp://example.com/posts", "http:///posts"} {
		if _, err := PostsEndpoint(in); err == nil {
			t.Errorf("PostsEndpoint(%q) should fail", in)
		}
	}
}
