package server

import "net/http"

// CORS
//
// 대시보드(별도 origin에서 서빙되는 SPA)가 API 를 호출할 수 있도록
// 모든 응답에 CORS 헤더를 붙인다. 인증이 없는 시스템이므로
// origin 제한 없이 개방한다.
//
// OPTIONS preflight 는 여기서 바로 204 로 종료한다.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
